package server

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/betbot/gomarket/internal/errclass"
	"github.com/betbot/gomarket/pkg/logger"
)

// ActivityEntry 一次用户变更动作的日志记录
type ActivityEntry struct {
	ID        string    `json:"id"`
	Action    string    `json:"action"`
	Account   string    `json:"account"`
	ProductID string    `json:"product_id,omitempty"`
	Detail    string    `json:"detail,omitempty"`
	OK        bool      `json:"ok"`
	ErrorCode string    `json:"error_code,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// recordActivity 把动作结果写入活动日志
// 日志失败只告警，不影响动作本身的结果
func (s *Server) recordActivity(ctx context.Context, action, productID, detail string, opErr error) {
	entry := ActivityEntry{
		ID:        uuid.NewString(),
		Action:    action,
		Account:   s.sess.Account(),
		ProductID: productID,
		Detail:    detail,
		OK:        opErr == nil,
		CreatedAt: time.Now(),
	}
	if opErr != nil {
		var ce *errclass.ClassifiedError
		if errors.As(opErr, &ce) {
			entry.ErrorCode = ce.Code
		} else {
			entry.ErrorCode = "UNKNOWN_ERROR"
		}
	}

	_, err := s.db.ExecContext(ctx, `
INSERT INTO activity (id,action,account,product_id,detail,ok,error_code,created_at)
VALUES (?,?,?,?,?,?,?,?)
`, entry.ID, entry.Action, entry.Account, entry.ProductID, entry.Detail,
		boolToInt(entry.OK), entry.ErrorCode, entry.CreatedAt.Format(time.RFC3339Nano))
	if err != nil {
		logger.Warnf("写入活动日志失败: %v", err)
	}
}

// listActivity 按时间倒序读取最近的活动记录
func (s *Server) listActivity(ctx context.Context, limit int) ([]ActivityEntry, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT id,action,account,product_id,detail,ok,error_code,created_at
FROM activity ORDER BY created_at DESC LIMIT ?
`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ActivityEntry
	for rows.Next() {
		var e ActivityEntry
		var ok int
		var created string
		if err := rows.Scan(&e.ID, &e.Action, &e.Account, &e.ProductID, &e.Detail, &ok, &e.ErrorCode, &created); err != nil {
			return nil, err
		}
		e.OK = ok != 0
		e.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
		out = append(out, e)
	}
	return out, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
