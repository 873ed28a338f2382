package env

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

var (
	ErrNotFound         = errors.New("environment variable with key not found")
	ErrConversionFailed = errors.New("failed to convert environment variable with key to value")
)

func errNotFound(key string) error {
	return fmt.Errorf("key: %s: %w", key, ErrNotFound)
}

func errConversionFailed(key string, typeName string, err error) error {
	return fmt.Errorf("key: %s type: %s: %w: %s", key, typeName, ErrConversionFailed, err)
}

func MustGetString(key string) string {
	val, err := GetString(key)
	if err != nil {
		panic(err)
	}

	return val
}

func GetString(key string) (string, error) {
	if val, found := os.LookupEnv(key); found {
		return val, nil
	}

	return "", errNotFound(key)
}

func GetStringOrDefault(key string, defaultVal string) string {
	if val, found := os.LookupEnv(key); found && val != "" {
		return val
	}

	return defaultVal
}

func GetInt(key string) (int, error) {
	envVal, err := GetString(key)
	if err != nil {
		return 0, err
	}

	val, err := strconv.Atoi(envVal)
	if err != nil {
		return 0, errConversionFailed(key, "int", err)
	}

	return val, nil
}

func MustGetInt(key string) int {
	val, err := GetInt(key)
	if err != nil {
		panic(err)
	}

	return val
}

// GetIntOrDefault falls back only when the key is unset. A value that does not
// parse is still an error.
func GetIntOrDefault(key string, defaultVal int) (int, error) {
	val, err := GetInt(key)
	if errors.Is(err, ErrNotFound) {
		return defaultVal, nil
	}

	return val, err
}

func GetDuration(key string) (time.Duration, error) {
	envVal, err := GetString(key)
	if err != nil {
		return 0, err
	}

	val, err := time.ParseDuration(envVal)
	if err != nil {
		return 0, errConversionFailed(key, "duration", err)
	}

	return val, nil
}

func GetDurationOrDefault(key string, defaultVal time.Duration) (time.Duration, error) {
	val, err := GetDuration(key)
	if errors.Is(err, ErrNotFound) {
		return defaultVal, nil
	}

	return val, err
}
