package server

import "fmt"

// migrate 初始化活动日志表结构
func (s *Server) migrate() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS activity (
  id          TEXT PRIMARY KEY,
  action      TEXT NOT NULL,
  account     TEXT NOT NULL,
  product_id  TEXT NOT NULL DEFAULT '',
  detail      TEXT NOT NULL DEFAULT '',
  ok          INTEGER NOT NULL,
  error_code  TEXT NOT NULL DEFAULT '',
  created_at  TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_activity_created_at ON activity(created_at);
`)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}
