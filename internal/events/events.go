package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/betbot/gomarket/internal/errclass"
)

// Severity 通知级别
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
)

// Notification 面向界面的通知事件（toast 等价物）
type Notification struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Severity  Severity  `json:"severity"`
	Code      string    `json:"code,omitempty"` // 错误通知携带分类码
	Timestamp time.Time `json:"timestamp"`
}

// NewNotification 创建通知
func NewNotification(title, message string, severity Severity) Notification {
	return Notification{
		ID:        uuid.NewString(),
		Title:     title,
		Message:   message,
		Severity:  severity,
		Timestamp: time.Now(),
	}
}

// FromClassified 从分类错误创建错误通知
func FromClassified(ce *errclass.ClassifiedError) Notification {
	n := NewNotification("操作失败", ce.Message, SeverityError)
	n.Code = ce.Code
	return n
}
