package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"

	"Stash/internal/cli/api"
	"Stash/internal/config"
)

type uploadCmd struct{}

func (uploadCmd) Name() string        { return "upload" }
func (uploadCmd) Description() string { return "Upload files into a subject" }
func (uploadCmd) Usage() string       { return "upload <subjectId> <file> [file...]" }

func (uploadCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) < 2 {
		return ErrUsage
	}
	c, err := authClient(cfg)
	if err != nil {
		return err
	}
	var data struct {
		Files    []fileView      `json:"files"`
		Rejected []rejectionView `json:"rejected"`
	}
	env, err := c.Upload(ctx, args[0], args[1:], &data)
	if err != nil {
		// при отказе всех файлов сервер всё равно присылает список причин
		var apiErr *api.Error
		if errors.As(err, &apiErr) && env != nil && env.Decode(&data) == nil {
			printRejected(data.Rejected)
		}
		return err
	}
	for _, f := range data.Files {
		fmt.Fprintf(Out, "%s  %s  [%s] %s\n", f.ID, f.OriginalName, f.Category, f.SyncStatus)
	}
	printRejected(data.Rejected)
	return nil
}

func printRejected(list []rejectionView) {
	for _, r := range list {
		fmt.Fprintf(Out, "rejected: %s (%s)\n", r.Name, r.Reason)
	}
}

type filesCmd struct{}

func (filesCmd) Name() string        { return "files" }
func (filesCmd) Description() string { return "List files, optionally of one subject" }
func (filesCmd) Usage() string       { return "files [subjectId]" }

func (filesCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) > 1 {
		return ErrUsage
	}
	c, err := authClient(cfg)
	if err != nil {
		return err
	}
	path := "/api/files"
	if len(args) == 1 {
		path = "/api/files/subject/" + url.PathEscape(args[0])
	}
	var data struct {
		Files []fileView `json:"files"`
	}
	if _, err := c.Do(ctx, http.MethodGet, path, nil, &data); err != nil {
		return err
	}
	if len(data.Files) == 0 {
		fmt.Fprintln(Out, "No files")
		return nil
	}
	for _, f := range data.Files {
		line := fmt.Sprintf("%s  %-30s %-12s %8d  %s", f.ID, f.OriginalName, f.Category, f.FileSize, f.SyncStatus)
		if f.RemoteURL != "" {
			line += "  " + f.RemoteURL
		}
		fmt.Fprintln(Out, line)
	}
	return nil
}

type downloadCmd struct{}

func (downloadCmd) Name() string        { return "download" }
func (downloadCmd) Description() string { return "Download a file to a local path" }
func (downloadCmd) Usage() string       { return "download <fileId> <path>" }

func (downloadCmd) Run(ctx context.Context, cfg *config.Config, args []string) (err error) {
	if len(args) != 2 {
		return ErrUsage
	}
	c, err := authClient(cfg)
	if err != nil {
		return err
	}
	out, err := os.Create(args[1])
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			_ = os.Remove(args[1])
		}
	}()
	if err = c.Download(ctx, args[0], out); err != nil {
		return err
	}
	fmt.Fprintf(Out, "Saved to %s\n", args[1])
	return nil
}

type rmCmd struct{}

func (rmCmd) Name() string        { return "rm" }
func (rmCmd) Description() string { return "Delete a file" }
func (rmCmd) Usage() string       { return "rm <fileId>" }

func (rmCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 1 {
		return ErrUsage
	}
	c, err := authClient(cfg)
	if err != nil {
		return err
	}
	if _, err := c.Do(ctx, http.MethodDelete, "/api/files/"+url.PathEscape(args[0]), nil, nil); err != nil {
		return err
	}
	fmt.Fprintln(Out, "File deleted")
	return nil
}

type resyncCmd struct{}

func (resyncCmd) Name() string        { return "resync" }
func (resyncCmd) Description() string { return "Retry remote sync of one file" }
func (resyncCmd) Usage() string       { return "resync <fileId>" }

func (resyncCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 1 {
		return ErrUsage
	}
	c, err := authClient(cfg)
	if err != nil {
		return err
	}
	var data struct {
		File fileView `json:"file"`
	}
	if _, err := c.Do(ctx, http.MethodPost, "/api/files/"+url.PathEscape(args[0])+"/sync", nil, &data); err != nil {
		return err
	}
	fmt.Fprintf(Out, "%s  %s\n", data.File.OriginalName, data.File.SyncStatus)
	return nil
}

func init() {
	RegisterCmd(groupFiles, uploadCmd{})
	RegisterCmd(groupFiles, filesCmd{})
	RegisterCmd(groupFiles, downloadCmd{})
	RegisterCmd(groupFiles, rmCmd{})
	RegisterCmd(groupFiles, resyncCmd{})
}
