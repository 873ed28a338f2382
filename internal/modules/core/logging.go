package core

import (
	"context"
	"fmt"

	"github.com/eskrenkovic/mediator-go"

	"go.uber.org/zap"
)

var _ mediator.PipelineBehavior = (*RequestLoggingBehavior)(nil)

type RequestLoggingBehavior struct {
	Logger *zap.Logger
}

func (b *RequestLoggingBehavior) Handle(
	ctx context.Context,
	request interface{},
	next mediator.RequestHandlerFunc,
) (interface{}, error) {
	b.Logger.Debug("processing request", requestFields(ctx, request)...)

	return next(ctx, request)
}

var _ mediator.PipelineBehavior = (*HandlerErrorLoggingBehavior)(nil)

type HandlerErrorLoggingBehavior struct {
	Logger *zap.Logger
}

func (b *HandlerErrorLoggingBehavior) Handle(
	ctx context.Context,
	request interface{},
	next mediator.RequestHandlerFunc,
) (interface{}, error) {
	response, err := next(ctx, request)
	if err != nil {
		fields := append(requestFields(ctx, request), zap.Error(err))

		// Business rule rejections are expected traffic.
		if ReasonOf(err, "") != "" {
			b.Logger.Info("handler rejected request", fields...)
		} else {
			b.Logger.Error("handler returned error", fields...)
		}
	}

	return response, err
}

// requestFields never logs the request body, which may carry passwords.
func requestFields(ctx context.Context, request interface{}) []zap.Field {
	var logFields []zap.Field

	correlationID := ctx.Value(CorrelationIDContextKey)
	if correlationID != nil && correlationID != "" {
		logFields = append(logFields, zap.Any("correlation_id", correlationID))
	}

	session := Session(ctx)
	if session.SessionID != "" {
		logFields = append(logFields, zap.String("session_id", session.SessionID))
	}
	if session.UserID != "" {
		logFields = append(logFields, zap.String("user_id", session.UserID))
	}

	if request != nil {
		logFields = append(logFields, zap.String("request_type", fmt.Sprintf("%T", request)))
	}

	return logFields
}
