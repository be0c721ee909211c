package service

import (
	"Stash/internal/repo"
	"errors"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidInput       = errors.New("invalid input")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrSubjectRequired    = errors.New("subject id is required")
	ErrSubjectExists      = errors.New("subject with this name already exists")
	ErrNoFiles            = errors.New("no files uploaded")
	ErrDriveNotConnected  = errors.New("remote storage not connected")
)

// notFound приводит «запись не найдена» репозитория к ErrNotFound сервиса.
func notFound(err error) error {
	if errors.Is(err, repo.ErrNotFound) {
		return ErrNotFound
	}
	return err
}
