// Package storage реализует локальное файловое хранилище для файлов заказов.
package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ErrBlobMissing возвращается, когда запись о файле есть, а сам файл на диске отсутствует.
var ErrBlobMissing = errors.New("stored file is missing")

// ErrFileTooLarge возвращается при превышении допустимого размера файла.
var ErrFileTooLarge = errors.New("file exceeds maximum allowed size")

// FileStore хранит файлы заказов в каталоге dir.
// В БД сохраняются пути относительно dir, клиентам они не отдаются.
type FileStore struct {
	dir     string
	maxSize int64
}

// NewFileStore создаёт хранилище в каталоге dir с ограничением размера файла maxSize байт.
func NewFileStore(dir string, maxSize int64) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &FileStore{dir: dir, maxSize: maxSize}, nil
}

// Save сохраняет содержимое src под сгенерированным именем и возвращает
// относительный путь и размер записанного файла.
func (s *FileStore) Save(src io.Reader, originalName string) (string, int64, error) {
	name := uuid.NewString() + strings.ToLower(filepath.Ext(originalName))

	dst, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", 0, fmt.Errorf("create file: %w", err)
	}
	defer dst.Close()

	// Читаем на один байт больше лимита, чтобы отличить ровно maxSize от превышения.
	size, err := io.Copy(dst, io.LimitReader(src, s.maxSize+1))
	if err != nil {
		_ = os.Remove(dst.Name())
		return "", 0, fmt.Errorf("write file: %w", err)
	}
	if size > s.maxSize {
		_ = os.Remove(dst.Name())
		return "", 0, ErrFileTooLarge
	}

	return name, size, nil
}

// Open открывает сохранённый файл по относительному пути.
func (s *FileStore) Open(relPath string) (io.ReadCloser, error) {
	full := filepath.Join(s.dir, filepath.Clean("/"+relPath))

	f, err := os.Open(full)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrBlobMissing, relPath)
		}
		return nil, fmt.Errorf("open file: %w", err)
	}
	return f, nil
}

// Remove удаляет сохранённый файл; отсутствие файла не считается ошибкой.
func (s *FileStore) Remove(relPath string) error {
	full := filepath.Join(s.dir, filepath.Clean("/"+relPath))
	if err := os.Remove(full); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove file: %w", err)
	}
	return nil
}
