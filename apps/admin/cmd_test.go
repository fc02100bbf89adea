package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/edusoma/academia/core"
	"github.com/edusoma/academia/core/user"
	dummydb "github.com/edusoma/academia/storage/database/dummy"
)

var usrRepo user.Repository

func setup(t *testing.T) *commandLine {
	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("setup() failed: %v", err)
	}
	usrRepo = dummydb.NewUserRepository(db)

	conf := core.NewConfig()
	validate := validator.New()
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)

	return &commandLine{
		usrSvc:   user.NewService(usrRepo, nil, conf),
		validate: validate,
		migrate:  func() error { return nil },
	}
}

type cliTest struct {
	name    string
	args    []string // without program name
	pwd     string
	wantErr error
}

func Test_commandLine_resetPassword(t *testing.T) {
	cli := setup(t)

	usr := user.User{Username: "alice", Role: user.RoleStudent}
	if err := usr.SetPassword("0ldPassw0rd!"); err != nil {
		t.Fatalf("SetPassword() failed: %v", err)
	}
	usr, err := usrRepo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}

	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "no args", args: []string{"resetpassword"}, wantErr: errHelp},
		{name: "username but no password", args: []string{"resetpassword", "-username", "lol"}, wantErr: errHelp},
		{name: "user not found", args: []string{"resetpassword", "-username", "lol"}, pwd: "lol", wantErr: user.ErrNotFound},
		{name: "reset", args: []string{"resetpassword", "-username", usr.Username}, pwd: "lol"},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		readPasswordFunc = func(fd int) ([]byte, error) {
			return []byte(tt.pwd), nil
		}

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(args)
			if err == nil {
				refreshed, err := usrRepo.GetUserByID(context.Background(), usr.ID)
				if err != nil {
					t.Fatalf("GetUserByID() failed: %v", err)
				}
				if bytes.Equal(refreshed.PasswordHash, usr.PasswordHash) {
					t.Error("failed to update new password")
				}
			} else if errors.Cause(err) != tt.wantErr {
				t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func Test_commandLine_createAdmin(t *testing.T) {
	cli := setup(t)

	base := []string{"createadmin", "-username", "root", "-first", "Ada", "-last", "Lovelace"}

	tests := []cliTest{
		{name: "no args", args: []string{"createadmin"}, wantErr: errHelp},
		{name: "missing names", args: []string{"createadmin", "-username", "root"}, wantErr: errHelp},
		{name: "no password", args: base, wantErr: errHelp},
		{name: "weak password rejected", args: base, pwd: "1234", wantErr: errWeak},
		{name: "ok", args: base, pwd: "G00d&Pl3nty!"},
		{name: "duplicate username", args: base, pwd: "G00d&Pl3nty!", wantErr: errDup},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		readPasswordFunc = func(fd int) ([]byte, error) {
			return []byte(tt.pwd), nil
		}

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(args)
			switch tt.wantErr {
			case nil:
				if err != nil {
					t.Fatalf("cli.run() unexpected error = %v", err)
				}
				adm, err := usrRepo.GetAdministratorByUsername(context.Background(), "root")
				if err != nil {
					t.Fatalf("GetAdministratorByUsername() failed: %v", err)
				}
				if got := adm.FullName(); got != "Ada Lovelace" {
					t.Errorf("FullName() = %q; want %q", got, "Ada Lovelace")
				}
			case errWeak:
				if err == nil {
					t.Fatal("cli.run() expected a password policy error")
				}
			case errDup:
				if err == nil {
					t.Fatal("cli.run() expected a duplicate username error")
				}
			default:
				if errors.Cause(err) != tt.wantErr {
					t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
				}
			}
		})
	}
}

// markers for cliTest expectations checked loosely
var (
	errWeak = errors.New("weak password")
	errDup  = errors.New("duplicate username")
)
