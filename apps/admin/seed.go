package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/volatiletech/null/v8"
	"gopkg.in/yaml.v3"

	"github.com/schedulink/schedulink/core"
	"github.com/schedulink/schedulink/core/event"
	"github.com/schedulink/schedulink/core/resource"
	"github.com/schedulink/schedulink/core/user"
)

type (
	seedUser struct {
		Name     string   `yaml:"name"`
		Username string   `yaml:"username"`
		Email    string   `yaml:"email"`
		Password string   `yaml:"password"`
		Roles    []string `yaml:"roles"`
	}

	seedResource struct {
		Name     string `yaml:"name"`
		Kind     string `yaml:"kind"`
		Capacity int    `yaml:"capacity"`
		Location string `yaml:"location"`
	}

	seedEvent struct {
		Name           string     `yaml:"name"`
		Description    string     `yaml:"description"`
		Venue          string     `yaml:"venue"`
		Status         string     `yaml:"status"`
		StartDate      time.Time  `yaml:"start_date"`
		EndDate        *time.Time `yaml:"end_date"`
		RecurrenceRule string     `yaml:"recurrence_rule"`
		CreatedBy      string     `yaml:"created_by"` // username
	}

	fixtures struct {
		Users     []seedUser     `yaml:"users"`
		Resources []seedResource `yaml:"resources"`
		Events    []seedEvent    `yaml:"events"`
	}
)

// seed loads a YAML fixtures file and creates the records it describes.
// Users and resources already present (by username/email and name) are skipped.
func (cli *commandLine) seed(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var fix fixtures
	if err = yaml.Unmarshal(raw, &fix); err != nil {
		return err
	}

	ctx := context.Background()
	now := time.Now().UTC()

	for _, su := range fix.Users {
		if err = cli.seedUser(ctx, su, now); err != nil {
			return err
		}
	}

	venues, err := cli.seedResources(ctx, fix.Resources, now)
	if err != nil {
		return err
	}

	for _, se := range fix.Events {
		if err = cli.seedEvent(ctx, se, venues, now); err != nil {
			return err
		}
	}
	return nil
}

func (cli *commandLine) seedUser(ctx context.Context, su seedUser, now time.Time) error {
	uname := core.CleanString(su.Username, true /* lower */)
	if _, err := cli.usrRepo.GetUserByUsernameOrEmail(ctx, uname); err == nil {
		return nil // exists
	} else if err != user.ErrNotFound {
		return err
	}

	active := true
	usr := user.User{
		Name:      core.CleanString(su.Name),
		Username:  uname,
		Email:     core.CleanString(su.Email, true /* lower */),
		IsActive:  &active,
		Roles:     su.Roles,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := usr.SetPassword(su.Password); err != nil {
		return err
	}
	_, err := cli.usrRepo.CreateUser(ctx, usr)
	return err
}

// seedResources creates missing resources and returns all known ones by name.
func (cli *commandLine) seedResources(ctx context.Context, srs []seedResource, now time.Time) (map[string]resource.Resource, error) {
	existing, err := cli.resRepo.QueryResources(ctx, nil, nil)
	if err != nil {
		return nil, err
	}
	byName := make(map[string]resource.Resource, len(existing))
	for _, res := range existing {
		byName[res.Name] = res
	}

	for _, sr := range srs {
		name := core.CleanString(sr.Name)
		if _, ok := byName[name]; ok {
			continue
		}
		active := true
		res, err := cli.resRepo.CreateResource(ctx, resource.Resource{
			Name:      name,
			Kind:      core.CleanString(sr.Kind, true /* lower */),
			Capacity:  sr.Capacity,
			Location:  core.CleanString(sr.Location),
			IsActive:  &active,
			CreatedAt: now,
			UpdatedAt: now,
		})
		if err != nil {
			return nil, err
		}
		byName[res.Name] = res
	}
	return byName, nil
}

func (cli *commandLine) seedEvent(ctx context.Context, se seedEvent, venues map[string]resource.Resource, now time.Time) error {
	name := core.CleanString(se.Name)
	existing, err := cli.evRepo.QueryEvents(ctx, &event.QueryFilter{Search: name}, nil)
	if err != nil {
		return err
	}
	for _, ev := range existing {
		if ev.Name == name {
			return nil // exists
		}
	}

	creator, err := cli.usrRepo.GetUserByUsernameOrEmail(ctx, core.CleanString(se.CreatedBy, true /* lower */))
	if err != nil {
		return fmt.Errorf("event %q: resolving creator %q: %w", name, se.CreatedBy, err)
	}

	ev := event.Event{
		Name:           name,
		Description:    core.CleanString(se.Description),
		Status:         core.CleanString(se.Status, true /* lower */),
		StartDate:      se.StartDate.UTC(),
		RecurrenceRule: se.RecurrenceRule,
		CreatedBy:      creator.ID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if ev.Status == "" {
		ev.Status = event.StatusPending
	}
	if se.EndDate != nil {
		ev.EndDate = null.TimeFrom(se.EndDate.UTC())
	}
	if se.Venue != "" {
		venue, ok := venues[core.CleanString(se.Venue)]
		if !ok {
			return fmt.Errorf("event %q: unknown venue %q", name, se.Venue)
		}
		ev.VenueID = null.IntFrom(venue.ID)
	}
	_, err = cli.evRepo.CreateEvent(ctx, ev)
	return err
}
