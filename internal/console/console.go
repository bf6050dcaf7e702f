// Package console is the line-oriented front end: a flat menu loop that
// prompts, calls the lifecycle service and dispatches on the returned
// outcome values. No menu ever calls back into another menu.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/ajibolad/phoneauth/internal/repositories"
	"github.com/ajibolad/phoneauth/internal/services"
	"github.com/ajibolad/phoneauth/internal/validate"
)

var errInputClosed = errors.New("input closed")

type Console struct {
	svc *services.AccountService
	in  *bufio.Scanner
	out io.Writer
}

func New(svc *services.AccountService, in io.Reader, out io.Writer) *Console {
	return &Console{
		svc: svc,
		in:  bufio.NewScanner(in),
		out: out,
	}
}

func (c *Console) Run(ctx context.Context) error {
	for {
		fmt.Fprintln(c.out, "1. Create an account")
		fmt.Fprintln(c.out, "2. Log in")
		fmt.Fprintln(c.out, "3. Delete your account")
		fmt.Fprintln(c.out, "4. View your profile")
		fmt.Fprintln(c.out, "0. Exit")

		choice, err := c.readLine("Your response: ")
		if errors.Is(err, errInputClosed) {
			return nil
		}
		if err != nil {
			return err
		}

		switch choice {
		case "1":
			err = c.createAccount(ctx)
		case "2":
			err = c.login(ctx)
		case "3":
			err = c.deleteAccount(ctx)
		case "4":
			err = c.viewProfile(ctx)
		case "0":
			fmt.Fprintln(c.out, "Have a nice day")
			return nil
		default:
			fmt.Fprintln(c.out, "Make a valid selection")
			continue
		}
		if errors.Is(err, errInputClosed) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

func (c *Console) createAccount(ctx context.Context) error {
	fmt.Fprintln(c.out, "** Creating an account **")

	name, err := c.promptValid("Enter your name: ", validate.Name)
	if err != nil {
		return err
	}
	dob, err := c.promptDateOfBirth()
	if err != nil {
		return err
	}
	phoneNumber, err := c.promptValid("Enter your phone number (10 digits): ", validate.PhoneNumber)
	if err != nil {
		return err
	}
	gender, err := c.promptValid("Enter your gender: ", validate.Gender)
	if err != nil {
		return err
	}

	outcome, err := c.svc.CreateAccount(ctx, services.CreateAccountRequest{
		Name:        name,
		DateOfBirth: dob,
		PhoneNumber: phoneNumber,
		Gender:      gender,
	})
	if err != nil {
		fmt.Fprintln(c.out, "Account could not be created, try again later")
		return nil
	}

	if outcome == services.CreateAlreadyExists {
		fmt.Fprintln(c.out, "You already have an account. Log in instead.")
		return nil
	}
	fmt.Fprintln(c.out, "Account created successfully. Log in to your account.")
	return nil
}

func (c *Console) login(ctx context.Context) error {
	fmt.Fprintln(c.out, "** Login to an existing account **")

	phoneNumber, err := c.promptValid("Enter your phone number (10 digits): ", validate.PhoneNumber)
	if err != nil {
		return err
	}

	result, err := c.svc.BeginLogin(ctx, phoneNumber)
	if err != nil {
		fmt.Fprintln(c.out, "Log in failed, try again later")
		return nil
	}

	switch result.Outcome {
	case services.LoginNotFound:
		fmt.Fprintln(c.out, "Account not found. Log in failed")
		return nil
	case services.LoginStillInSession:
		fmt.Fprintln(c.out, "Still in session, no need to log in.")
		return nil
	case services.LoginDeliveryFailed:
		fmt.Fprintln(c.out, "The verification code could not be sent. Log in failed")
		return nil
	}

	fmt.Fprintln(c.out, "Your session has timed out, log in again")
	for {
		code, err := c.readLine("Enter the verification code that was sent: ")
		if err != nil {
			return err
		}

		verify, err := c.svc.SubmitCode(ctx, result.ChallengeID, code)
		if err != nil {
			fmt.Fprintln(c.out, "Log in failed, try again later")
			return nil
		}

		switch verify.Outcome {
		case services.VerifySuccess:
			fmt.Fprintln(c.out, "Account found, Log in successful")
			return nil
		case services.VerifyWrongCode:
			fmt.Fprintf(c.out, "Wrong code. %d attempt(s) left.\n", verify.AttemptsLeft)
		case services.VerifyFailure:
			fmt.Fprintln(c.out, "Wrong code. Log in failed.")
			return nil
		default:
			fmt.Fprintln(c.out, "The code has expired. Log in failed")
			return nil
		}
	}
}

func (c *Console) deleteAccount(ctx context.Context) error {
	fmt.Fprintln(c.out, "** Deleting an account **")

	phoneNumber, err := c.promptValid("Enter your phone number (10 digits): ", validate.PhoneNumber)
	if err != nil {
		return err
	}

	// keep asking until the answer is an explicit yes or no; whether the
	// account exists is the service's call to make
	var confirmation string
	for {
		fmt.Fprintln(c.out, "YOUR ACCOUNT CANNOT BE RECOVERED AFTER DELETION")
		answer, err := c.readLine("Are you sure you want to delete your account? This process is IRREVERSIBLE (y/n): ")
		if err != nil {
			return err
		}
		if services.ParseConfirmation(answer) != services.ConfirmUnrecognized {
			confirmation = answer
			break
		}
	}

	outcome, err := c.svc.DeleteAccount(ctx, phoneNumber, confirmation)
	if err != nil {
		fmt.Fprintln(c.out, "Delete failed, try again later")
		return nil
	}

	switch outcome {
	case services.DeleteDeleted:
		fmt.Fprintln(c.out, "Account deleted successfully")
	case services.DeleteNotDeleted:
		fmt.Fprintln(c.out, "Account not deleted")
	case services.DeleteNotFound:
		fmt.Fprintln(c.out, "Account not found. Delete failed")
	}
	return nil
}

func (c *Console) viewProfile(ctx context.Context) error {
	phoneNumber, err := c.promptValid("Enter your phone number (10 digits): ", validate.PhoneNumber)
	if err != nil {
		return err
	}

	profile, err := c.svc.Profile(ctx, phoneNumber)
	if errors.Is(err, repositories.ErrNotFound) {
		fmt.Fprintln(c.out, "Account not found")
		return nil
	}
	if err != nil {
		fmt.Fprintln(c.out, "Profile could not be loaded, try again later")
		return nil
	}

	fmt.Fprintf(c.out, "** Showing profile for %s: **\n", profile.Name)
	fmt.Fprintf(c.out, "Phone number: %s\n", profile.PhoneNumber)
	fmt.Fprintf(c.out, "Date of birth (Age): %s (%d)\n", profile.DateOfBirth, profile.Age)
	fmt.Fprintf(c.out, "Gender: %s\n", profile.Gender)
	fmt.Fprintf(c.out, "Date registered: %s\n", profile.RegisteredAt)
	return nil
}

// readLine prompts once and returns the trimmed input line.
func (c *Console) readLine(prompt string) (string, error) {
	fmt.Fprint(c.out, prompt)
	if !c.in.Scan() {
		if err := c.in.Err(); err != nil {
			return "", err
		}
		return "", errInputClosed
	}
	return strings.TrimSpace(c.in.Text()), nil
}

// promptValid re-prompts until the input passes the check.
func (c *Console) promptValid(prompt string, check func(string) error) (string, error) {
	for {
		value, err := c.readLine(prompt)
		if err != nil {
			return "", err
		}
		if err := check(value); err != nil {
			fmt.Fprintln(c.out, err.Error())
			continue
		}
		return value, nil
	}
}

func (c *Console) promptDateOfBirth() (time.Time, error) {
	for {
		value, err := c.readLine("Enter your date of birth (YYYY-MM-DD): ")
		if err != nil {
			return time.Time{}, err
		}
		dob, err := validate.DateOfBirth(value)
		if err != nil {
			fmt.Fprintln(c.out, err.Error())
			continue
		}
		return dob, nil
	}
}
