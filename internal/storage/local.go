// Package storage — локальное хранилище загруженных файлов на диске.
package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrTooLarge — содержимое превысило лимит размера при записи.
var ErrTooLarge = errors.New("file too large")

// LocalStore хранит файлы в одном каталоге под сгенерированными именами.
type LocalStore struct {
	dir string
}

// Saved — результат записи файла на диск.
type Saved struct {
	Name string // сгенерированное имя
	Path string // полный путь
	Size int64
}

// NewLocalStore создаёт каталог, если его нет.
func NewLocalStore(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create upload dir %s: %w", dir, err)
	}
	return &LocalStore{dir: dir}, nil
}

// Dir возвращает каталог хранилища.
func (s *LocalStore) Dir() string { return s.dir }

// Write записывает поток во временный файл, делает fsync и атомарно переименовывает.
// Если записано больше limit байт (limit > 0), файл удаляется и возвращается ErrTooLarge.
func (s *LocalStore) Write(r io.Reader, originalName string, limit int64) (*Saved, error) {
	name := StorageName(originalName, time.Now())
	full := filepath.Join(s.dir, name)
	tmp := full + ".tmp"

	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o640)
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}

	src := r
	if limit > 0 {
		src = io.LimitReader(r, limit+1)
	}
	size, err := io.Copy(f, src)
	if err == nil && limit > 0 && size > limit {
		err = ErrTooLarge
	}
	if err == nil {
		err = f.Sync()
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(tmp)
		if errors.Is(err, ErrTooLarge) {
			return nil, err
		}
		return nil, fmt.Errorf("write %s: %w", name, err)
	}

	if err := os.Rename(tmp, full); err != nil {
		_ = os.Remove(tmp)
		return nil, fmt.Errorf("rename %s: %w", name, err)
	}
	return &Saved{Name: name, Path: full, Size: size}, nil
}

// Open открывает файл для чтения. Вызывающий обязан закрыть файл.
func (s *LocalStore) Open(path string) (*os.File, error) {
	return os.Open(path)
}

// Delete удаляет файл. Отсутствие файла не считается ошибкой.
func (s *LocalStore) Delete(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove %s: %w", path, err)
	}
	return nil
}

// Exists проверяет наличие обычного файла по пути.
func (s *LocalStore) Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// StorageName генерирует имя вида {unix-millis}-{random}{ext}.
// Пример: 1718000000000-3f9c2a1b7d4e.pdf
func StorageName(originalName string, now time.Time) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(originalName)))
	if len(ext) > 16 || strings.ContainsAny(ext, `/\ `) {
		ext = ""
	}
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	return fmt.Sprintf("%d-%s%s", now.UnixMilli(), suffix, ext)
}
