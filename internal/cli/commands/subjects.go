package commands

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"Stash/internal/config"
)

type subjectsCmd struct{}

func (subjectsCmd) Name() string        { return "subjects" }
func (subjectsCmd) Description() string { return "List your subjects" }
func (subjectsCmd) Usage() string       { return "subjects" }

func (subjectsCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 0 {
		return ErrUsage
	}
	c, err := authClient(cfg)
	if err != nil {
		return err
	}
	var data struct {
		Subjects []subjectView `json:"subjects"`
	}
	if _, err := c.Do(ctx, http.MethodGet, "/api/subjects", nil, &data); err != nil {
		return err
	}
	if len(data.Subjects) == 0 {
		fmt.Fprintln(Out, "No subjects yet")
		return nil
	}
	for _, s := range data.Subjects {
		if s.Code != "" {
			fmt.Fprintf(Out, "%s  %s (%s)\n", s.ID, s.Name, s.Code)
			continue
		}
		fmt.Fprintf(Out, "%s  %s\n", s.ID, s.Name)
	}
	return nil
}

type subjectAddCmd struct{}

func (subjectAddCmd) Name() string        { return "subject-add" }
func (subjectAddCmd) Description() string { return "Create a subject" }
func (subjectAddCmd) Usage() string       { return "subject-add <name> [code]" }

func (subjectAddCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return ErrUsage
	}
	c, err := authClient(cfg)
	if err != nil {
		return err
	}
	body := map[string]string{"name": args[0]}
	if len(args) == 2 {
		body["code"] = args[1]
	}
	var data struct {
		Subject subjectView `json:"subject"`
	}
	if _, err := c.Do(ctx, http.MethodPost, "/api/subjects", body, &data); err != nil {
		return err
	}
	fmt.Fprintf(Out, "Subject created: %s\n", data.Subject.ID)
	return nil
}

type subjectRmCmd struct{}

func (subjectRmCmd) Name() string        { return "subject-rm" }
func (subjectRmCmd) Description() string { return "Delete a subject" }
func (subjectRmCmd) Usage() string       { return "subject-rm <subjectId>" }

func (subjectRmCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 1 {
		return ErrUsage
	}
	c, err := authClient(cfg)
	if err != nil {
		return err
	}
	if _, err := c.Do(ctx, http.MethodDelete, "/api/subjects/"+url.PathEscape(args[0]), nil, nil); err != nil {
		return err
	}
	fmt.Fprintln(Out, "Subject deleted")
	return nil
}

func init() {
	RegisterCmd(groupSubjects, subjectsCmd{})
	RegisterCmd(groupSubjects, subjectAddCmd{})
	RegisterCmd(groupSubjects, subjectRmCmd{})
}
