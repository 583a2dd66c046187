package main

import (
	"context"
	"time"

	"github.com/schedulink/schedulink/core"
	"github.com/schedulink/schedulink/core/user"
)

// createAdmin creates a user with all roles, or promotes an existing one.
func (cli *commandLine) createAdmin(uname, email, pwd string) error {
	ctx := context.Background()
	uname = core.CleanString(uname, true /* lower */)
	email = core.CleanString(email, true /* lower */)
	now := time.Now().UTC()

	usr, err := cli.usrRepo.GetUserByUsernameOrEmail(ctx, uname)
	if err != nil {
		if err != user.ErrNotFound {
			return err
		}
		active := true
		usr = user.User{
			Name:      uname,
			Username:  uname,
			Email:     email,
			IsActive:  &active,
			Roles:     user.AllRoles,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err = usr.SetPassword(pwd); err != nil {
			return err
		}
		_, err = cli.usrRepo.CreateUser(ctx, usr)
		return err
	}

	usr.Roles = user.AllRoles
	if err = usr.SetPassword(pwd); err != nil {
		return err
	}
	active := true
	_, err = cli.usrRepo.UpdateUser(ctx, user.User{
		ID:           usr.ID,
		Roles:        usr.Roles,
		PasswordHash: usr.PasswordHash,
		UpdatedAt:    now,
	}, &active)
	return err
}
