package artifact

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ErrNotFound — артефакт не найден.
var ErrNotFound = errors.New("artifact not found")

// defaultDir — каталог хранения по умолчанию.
const defaultDir = "data/artifacts"

// Store — файловое хранилище байтовых артефактов.
//
// Идентификатор артефакта встраивает run ID, токен уникальности и
// исходное имя файла: "<run_id>_<hex>_<name>". Это позволяет находить
// все артефакты run перебором по префиксу без отдельного индекса.
type Store struct {
	dir string
}

// Config — конфигурация Store.
type Config struct {
	// Dir — каталог для файлов (default: data/artifacts).
	// Создаётся при необходимости.
	Dir string
}

// NewStore создаёт Store и каталог хранения.
func NewStore(cfg Config) (*Store, error) {
	dir := cfg.Dir
	if dir == "" {
		dir = defaultDir
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create artifacts dir: %w", err)
	}

	return &Store{dir: dir}, nil
}

// Put сохраняет именованные байты под run и возвращает artifact ID.
func (s *Store) Put(runID uuid.UUID, name string, data []byte) (string, error) {
	// Имя из запроса не должно выходить за пределы каталога.
	name = filepath.Base(name)
	if name == "." || name == string(filepath.Separator) {
		name = "artifact"
	}

	id := fmt.Sprintf("%s_%s_%s", runID, strings.ReplaceAll(uuid.NewString(), "-", ""), name)

	if err := os.WriteFile(filepath.Join(s.dir, id), data, 0o644); err != nil {
		return "", fmt.Errorf("write artifact: %w", err)
	}
	return id, nil
}

// Get возвращает содержимое артефакта по ID.
func (s *Store) Get(artifactID string) ([]byte, error) {
	path, err := s.Path(artifactID)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read artifact: %w", err)
	}
	return data, nil
}

// Path возвращает путь к файлу артефакта или ErrNotFound.
func (s *Store) Path(artifactID string) (string, error) {
	// ID приходит из URL — не даём ему указывать вне каталога.
	if artifactID != filepath.Base(artifactID) {
		return "", ErrNotFound
	}

	path := filepath.Join(s.dir, artifactID)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("stat artifact: %w", err)
	}
	return path, nil
}

// ListByRun возвращает ID всех артефактов run в лексикографическом порядке.
func (s *Store) ListByRun(runID uuid.UUID) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read artifacts dir: %w", err)
	}

	prefix := runID.String() + "_"
	var ids []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasPrefix(e.Name(), prefix) {
			ids = append(ids, e.Name())
		}
	}
	return ids, nil
}
