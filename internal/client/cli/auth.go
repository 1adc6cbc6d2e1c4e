package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/dmitrijs2005/intervals/internal/client/client"
)

// Login probes the server, asks for a password only when the backend wants
// one, and opens a session for the chosen profile. Switching to a different
// profile replaces the local replica with that profile's server records.
func (a *App) Login(ctx context.Context) error {

	probe, err := a.authService.TestConnection(ctx, "")
	if err != nil && !errors.Is(err, client.ErrUnauthorized) {
		log.Printf("server unreachable: %v", err)
		return err
	}
	// a rejected empty probe means the backend wants a password
	passwordRequired := errors.Is(err, client.ErrUnauthorized) ||
		(probe != nil && probe.PasswordRequired)

	profile, err := GetSimpleText(a.reader, "Enter profile name", os.Stdout)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}

	var password string
	if passwordRequired {
		password, err = GetPassword(os.Stdout)
		if err != nil {
			log.Printf("error: %v", err)
			return err
		}
	}

	switched, err := a.authService.Login(ctx, profile, password)
	if err != nil {
		if errors.Is(err, client.ErrUnauthorized) {
			fmt.Println("Wrong password")
		} else {
			log.Printf("Login unsuccessful: %s", err.Error())
		}
		return err
	}

	a.profile = profile
	fmt.Printf("Logged in as %s\n", profile)

	if switched {
		if err := a.syncService.SwitchProfile(ctx); err != nil {
			log.Printf("profile switch failed: %v", err)
			return err
		}
		fmt.Println("Local data replaced with the new profile's records")
		return nil
	}

	return a.Sync(ctx)
}

func (a *App) Logout(ctx context.Context) error {
	if err := a.authService.Logout(ctx); err != nil {
		log.Printf("logout error: %v", err)
		return err
	}
	a.profile = ""
	fmt.Println("Logged out")
	return nil
}

func (a *App) Profiles(ctx context.Context) error {

	probe, err := a.authService.TestConnection(ctx, "")
	if err != nil && !errors.Is(err, client.ErrUnauthorized) {
		log.Printf("server unreachable: %v", err)
		return err
	}

	var password string
	if errors.Is(err, client.ErrUnauthorized) || (probe != nil && probe.PasswordRequired) {
		password, err = GetPassword(os.Stdout)
		if err != nil {
			return err
		}
	}

	profiles, err := a.authService.Profiles(ctx, password)
	if err != nil {
		if errors.Is(err, client.ErrUnauthorized) {
			fmt.Println("Wrong password")
		} else {
			log.Printf("error: %v", err)
		}
		return err
	}

	if len(profiles) == 0 {
		fmt.Println("No profiles on the server yet")
		return nil
	}
	for _, p := range profiles {
		fmt.Println(" -", p)
	}
	return nil
}

func (a *App) Status(ctx context.Context) error {
	fmt.Printf("Server: %s\n", a.config.ServerAddr)

	if err := a.authService.Ping(ctx); err != nil {
		fmt.Println("Status: unreachable")
	} else {
		fmt.Println("Status: reachable")
		probe, err := a.authService.TestConnection(ctx, "")
		switch {
		case errors.Is(err, client.ErrUnauthorized):
			fmt.Println("Password: required")
		case err == nil && probe.PasswordRequired:
			fmt.Println("Password: required")
		case err == nil:
			fmt.Println("Password: not required")
		}
	}

	if a.isLoggedIn() {
		fmt.Printf("Profile: %s\n", a.profile)
	} else {
		fmt.Println("Profile: not logged in")
	}
	return nil
}

func (a *App) Sync(ctx context.Context) error {
	err := a.syncService.SyncNow(ctx)
	if err != nil {
		if errors.Is(err, client.ErrUnauthorized) {
			a.profile = ""
			fmt.Println("Session expired, please log in again")
		} else {
			log.Printf("sync error: %v", err)
		}
		return err
	}
	fmt.Println("Synced")
	return nil
}
