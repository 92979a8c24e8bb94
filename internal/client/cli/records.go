package cli

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dmitrijs2005/offsync/internal/client/models"
	"github.com/dmitrijs2005/offsync/internal/common"
)

// Add stages a new record built from args: bare words form the name,
// key=value pairs become extra fields.
//
//	add Mihai city=Riga
func (a *App) Add(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: usage: add <name> [key=value ...]", common.ErrorValidation)
	}

	fields, err := models.FieldsFromArgs(args)
	if err != nil {
		return err
	}

	rec, err := a.records.Create(ctx, fields)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Record %s saved\n", rec.ID)
	return nil
}

func (a *App) List(ctx context.Context) error {
	list, err := a.records.List(ctx)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Fprintln(a.out, "No records")
		return nil
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tSYNCED\tCREATED\tFIELDS")
	for _, r := range list {
		fmt.Fprintf(tw, "%s\t%s\t%t\t%s\t%s\n",
			r.ID, r.Name(), r.Synchronized, r.CreatedAt.Local().Format(time.DateTime), extraFields(r))
	}
	return tw.Flush()
}

// Show prints every field of one record.
//
//	show 5f0c...
func (a *App) Show(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: usage: show <id>", common.ErrorValidation)
	}

	r, err := a.records.Get(ctx, args[0])
	if err != nil {
		return err
	}

	state := "pending"
	if r.Synchronized {
		state = "synchronized"
	}
	fmt.Fprintf(a.out, "ID:      %s\n", r.ID)
	fmt.Fprintf(a.out, "Created: %s\n", r.CreatedAt.Local().Format(time.DateTime))
	fmt.Fprintf(a.out, "State:   %s\n", state)

	keys := slices.Sorted(maps.Keys(r.Fields))
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	for _, k := range keys {
		fmt.Fprintf(tw, "  %s\t%s\n", k, r.Fields[k])
	}
	return tw.Flush()
}

func extraFields(r *models.Record) string {
	keys := make([]string, 0, len(r.Fields))
	for k := range r.Fields {
		if k != common.FieldName {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+r.Fields[k])
	}
	return strings.Join(parts, " ")
}

// Sync runs one reconciliation cycle right away.
func (a *App) Sync(ctx context.Context) error {
	rep, err := a.syncer.RunCycle(ctx)
	if errors.Is(err, common.ErrorOffline) {
		n, _ := a.records.Backlog(ctx)
		fmt.Fprintf(a.out, "Server is offline, %d record(s) waiting\n", n)
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Pushed %d record(s)\n", rep.Pushed)
	return nil
}

func (a *App) Status(ctx context.Context) error {
	user := a.session.Username()
	if user == "" {
		user = "-"
	}

	session := "not logged in"
	switch {
	case a.isLocked():
		session = "locked"
	case a.isLoggedIn():
		session = "active"
	}

	backlog, err := a.records.Backlog(ctx)
	if err != nil {
		return err
	}

	lastSync := "never"
	if t, err := a.syncer.LastSync(ctx); err != nil {
		return err
	} else if !t.IsZero() {
		lastSync = t.Local().Format(time.DateTime)
	}

	fmt.Fprintf(a.out, "Mode:      %s\n", a.currentMode())
	fmt.Fprintf(a.out, "User:      %s\n", user)
	fmt.Fprintf(a.out, "Session:   %s\n", session)
	fmt.Fprintf(a.out, "Pending:   %d\n", backlog)
	fmt.Fprintf(a.out, "Last sync: %s\n", lastSync)
	return nil
}
