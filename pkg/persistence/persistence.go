package persistence

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// Service 持久化服务接口
type Service interface {
	NewStore(prefix, id, tag string) Store
}

// Store 存储接口
type Store interface {
	Save(data interface{}) error
	Load(data interface{}) error
}

// ErrNotExists 表示数据不存在
var ErrNotExists = fmt.Errorf("persistence data not exists")

// JSONFileService 基于 JSON 文件的持久化服务
type JSONFileService struct {
	baseDir string
}

// NewJSONFileService 创建 JSON 文件持久化服务
func NewJSONFileService(baseDir string) *JSONFileService {
	return &JSONFileService{baseDir: baseDir}
}

// NewStore 创建新的存储
func (s *JSONFileService) NewStore(prefix, id, tag string) Store {
	return &jsonFileStore{
		baseDir: s.baseDir,
		key:     fmt.Sprintf("%s:%s:%s", prefix, id, tag),
	}
}

// jsonFileStore JSON 文件存储实现
type jsonFileStore struct {
	baseDir string
	key     string
}

var unsafeFileChars = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

// path 由 key 生成安全的文件路径
func (s *jsonFileStore) path() string {
	name := unsafeFileChars.ReplaceAllString(strings.ReplaceAll(s.key, ":", "_"), "_")
	return filepath.Join(s.baseDir, name+".json")
}

// Save 把数据序列化为 JSON 写入文件
func (s *jsonFileStore) Save(data interface{}) error {
	if err := os.MkdirAll(s.baseDir, 0755); err != nil {
		return fmt.Errorf("创建持久化目录失败: %w", err)
	}
	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("序列化失败 %s: %w", s.key, err)
	}
	// 先写临时文件再改名，避免写一半被读到
	tmp := s.path() + ".tmp"
	if err := os.WriteFile(tmp, b, 0644); err != nil {
		return fmt.Errorf("写入失败 %s: %w", s.key, err)
	}
	return os.Rename(tmp, s.path())
}

// Load 从文件读取并反序列化；文件不存在时返回 ErrNotExists
func (s *jsonFileStore) Load(data interface{}) error {
	b, err := os.ReadFile(s.path())
	if err != nil {
		if os.IsNotExist(err) {
			return ErrNotExists
		}
		return fmt.Errorf("读取失败 %s: %w", s.key, err)
	}
	if err := json.Unmarshal(b, data); err != nil {
		return fmt.Errorf("反序列化失败 %s: %w", s.key, err)
	}
	return nil
}
