package main

import (
	"context"

	"github.com/edusoma/academia/core/user"
)

// createAdmin registers a new administrator account; the password goes
// through the full policy before it is accepted.
func (cli *commandLine) createAdmin(uname, first, last, pwd string) error {
	na := user.NewAdministrator{
		Username:  uname,
		FirstName: first,
		LastName:  last,
		Password:  pwd,
	}
	if err := na.Validate(cli.validate); err != nil {
		return err
	}
	_, err := cli.usrSvc.CreateAdministrator(context.Background(), na)
	return err
}
