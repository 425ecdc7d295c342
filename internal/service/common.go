package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"go.uber.org/zap"

	"github.com/noah-isme/school-portal-api/internal/models"
	appErrors "github.com/noah-isme/school-portal-api/pkg/errors"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type scopeResolver interface {
	Resolve(ctx context.Context, session *models.Session) (models.Scope, error)
}

type auditWriter interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

func paginate(page, size, total int) *models.Pagination {
	if page < 1 {
		page = 1
	}
	if size <= 0 || size > maxPageSize {
		size = defaultPageSize
	}
	return &models.Pagination{Page: page, PageSize: size, TotalCount: total}
}

func internalError(err error, message string) error {
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, message)
}

func validationError(err error, message string) error {
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, message)
}

// lookupError maps sql.ErrNoRows to NOT_FOUND and anything else to INTERNAL_ERROR.
func lookupError(err error, notFound, failure string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, notFound)
	}
	return internalError(err, failure)
}

func forbidden() error {
	return appErrors.Clone(appErrors.ErrForbidden, "")
}

func requireSession(session *models.Session) error {
	if session == nil {
		return appErrors.Clone(appErrors.ErrUnauthorized, "missing session")
	}
	return nil
}

// recordAudit writes an audit row; failures are logged and swallowed.
func recordAudit(ctx context.Context, writer auditWriter, logger *zap.Logger, session *models.Session, action, resource, resourceID string, values interface{}) {
	if writer == nil || session == nil {
		return
	}
	info := models.RequestInfoFrom(ctx)
	entry := &models.AuditLog{
		UserID:     &session.UserID,
		Action:     action,
		Resource:   resource,
		ResourceID: &resourceID,
		IPAddress:  info.IPAddress,
		UserAgent:  info.UserAgent,
	}
	if values != nil {
		if payload, err := json.Marshal(values); err == nil {
			entry.NewValues = payload
		}
	}
	if err := writer.CreateAuditLog(ctx, entry); err != nil {
		logger.Warn("failed to record audit log", zap.String("resource", resource), zap.String("action", action), zap.Error(err))
	}
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
