package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"strings"

	"github.com/samvad-hq/petfriends-verifier/internal/config"
	"github.com/samvad-hq/petfriends-verifier/internal/logger"
	"github.com/samvad-hq/petfriends-verifier/pkg/petfriends"
)

const usage = `usage: petctl <command> [flags]

commands:
  key            print an auth key for the configured account
  list           list pets: list [all|mine]
  create         create a pet with a photo
  create-simple  create a pet without a photo
  update         update name, animal type and age of a pet
  delete         delete a pet
  photo          set the photo of a pet

Credentials come from VALID_EMAIL and VALID_PASSWORD. The password is
prompted for when it is not set or when -email names another account.
`

var errUsage = errors.New("usage")

type cli struct {
	cfg    *config.Config
	client *petfriends.Client
	stdout io.Writer
	stderr io.Writer
}

type command func(ctx context.Context, c *cli, args []string) (int, petfriends.Body, error)

var commands = map[string]command{
	"key":           keyCommand,
	"list":          listCommand,
	"create":        createCommand,
	"create-simple": createSimpleCommand,
	"update":        updateCommand,
	"delete":        deleteCommand,
	"photo":         photoCommand,
}

// run executes one command and returns the process exit code: 0 for a 2xx
// answer, 1 for any other status, 2 for usage and transport errors.
func run(ctx context.Context, cfg *config.Config, log logger.Logger, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return 2
	}
	cmd, ok := commands[args[0]]
	if !ok {
		fmt.Fprintf(stderr, "unknown command %q\n\n%s", args[0], usage)
		return 2
	}

	client, err := petfriends.New(petfriends.Options{
		BaseURL: cfg.BaseURL,
		Timeout: cfg.RequestTimeout,
		Logger:  log,
	})
	if err != nil {
		fmt.Fprintf(stderr, "init client: %v\n", err)
		return 2
	}

	c := &cli{cfg: cfg, client: client, stdout: stdout, stderr: stderr}
	status, body, err := cmd(ctx, c, args[1:])
	if err != nil {
		if !errors.Is(err, errUsage) {
			fmt.Fprintf(stderr, "%s: %v\n", args[0], err)
		}
		return 2
	}
	if err := printResponse(stdout, status, body); err != nil {
		fmt.Fprintf(stderr, "print response: %v\n", err)
		return 2
	}
	if status < http.StatusOK || status >= http.StatusMultipleChoices {
		return 1
	}
	return 0
}

func printResponse(w io.Writer, status int, body petfriends.Body) error {
	fmt.Fprintf(w, "status: %d\n", status)
	out, err := json.MarshalIndent(body, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "%s\n", out)
	return err
}

// newFlags returns a flag set for name with the shared -email and -key flags.
func (c *cli) newFlags(name string) (*flag.FlagSet, *string, *string) {
	fs := flag.NewFlagSet("petctl "+name, flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	email := fs.String("email", c.cfg.ValidEmail, "account email")
	key := fs.String("key", "", "auth key; obtained by logging in when empty")
	return fs, email, key
}

func (c *cli) parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	return nil
}

// password returns the configured password when email is the configured
// account and it has one; otherwise it prompts.
func (c *cli) password(email string) (string, error) {
	if email == c.cfg.ValidEmail && c.cfg.ValidPassword != "" {
		return c.cfg.ValidPassword, nil
	}
	pw, err := getPassword(c.stderr, int(os.Stdin.Fd()))
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(pw), nil
}

// authKey returns the explicit key or logs in to get one.
func (c *cli) authKey(ctx context.Context, email, key string) (petfriends.AuthKey, error) {
	if key != "" {
		return petfriends.AuthKey(key), nil
	}
	if email == "" {
		return "", errors.New("no email configured; set VALID_EMAIL or pass -email")
	}
	pw, err := c.password(email)
	if err != nil {
		return "", err
	}
	status, body, err := c.client.GetAPIKey(ctx, email, pw)
	if err != nil {
		return "", err
	}
	k, ok := body.Key()
	if status != http.StatusOK || !ok {
		return "", fmt.Errorf("login failed with status %d", status)
	}
	return k, nil
}

func required(fs *flag.FlagSet, names ...string) error {
	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	var missing []string
	for _, n := range names {
		if !set[n] {
			missing = append(missing, "-"+n)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	sort.Strings(missing)
	return fmt.Errorf("missing required flags: %s", strings.Join(missing, ", "))
}

func keyCommand(ctx context.Context, c *cli, args []string) (int, petfriends.Body, error) {
	fs, email, _ := c.newFlags("key")
	if err := c.parse(fs, args); err != nil {
		return 0, nil, err
	}
	if *email == "" {
		return 0, nil, errors.New("no email configured; set VALID_EMAIL or pass -email")
	}
	pw, err := c.password(*email)
	if err != nil {
		return 0, nil, err
	}
	return c.client.GetAPIKey(ctx, *email, pw)
}

func listCommand(ctx context.Context, c *cli, args []string) (int, petfriends.Body, error) {
	fs, email, key := c.newFlags("list")
	if err := c.parse(fs, args); err != nil {
		return 0, nil, err
	}
	scope := petfriends.ScopeAll
	switch fs.NArg() {
	case 0:
	case 1:
		scope = petfriends.Scope(fs.Arg(0))
	default:
		return 0, nil, fmt.Errorf("expected at most one scope argument, got %d", fs.NArg())
	}
	k, err := c.authKey(ctx, *email, *key)
	if err != nil {
		return 0, nil, err
	}
	return c.client.ListPets(ctx, k, scope)
}

type petFlags struct {
	name, animalType, age *string
}

func addPetFlags(fs *flag.FlagSet) petFlags {
	return petFlags{
		name:       fs.String("name", "", "pet name"),
		animalType: fs.String("type", "", "animal type"),
		age:        fs.String("age", "", "age"),
	}
}

func createCommand(ctx context.Context, c *cli, args []string) (int, petfriends.Body, error) {
	fs, email, key := c.newFlags("create")
	pet := addPetFlags(fs)
	photo := fs.String("photo", "", "path to the photo file")
	if err := c.parse(fs, args); err != nil {
		return 0, nil, err
	}
	if err := required(fs, "name", "type", "age", "photo"); err != nil {
		return 0, nil, err
	}
	k, err := c.authKey(ctx, *email, *key)
	if err != nil {
		return 0, nil, err
	}
	return c.client.CreatePet(ctx, k, *pet.name, *pet.animalType, *pet.age, *photo)
}

func createSimpleCommand(ctx context.Context, c *cli, args []string) (int, petfriends.Body, error) {
	fs, email, key := c.newFlags("create-simple")
	pet := addPetFlags(fs)
	if err := c.parse(fs, args); err != nil {
		return 0, nil, err
	}
	if err := required(fs, "name", "type", "age"); err != nil {
		return 0, nil, err
	}
	k, err := c.authKey(ctx, *email, *key)
	if err != nil {
		return 0, nil, err
	}
	return c.client.CreatePetSimple(ctx, k, *pet.name, *pet.animalType, *pet.age)
}

func updateCommand(ctx context.Context, c *cli, args []string) (int, petfriends.Body, error) {
	fs, email, key := c.newFlags("update")
	id := fs.String("id", "", "pet id")
	pet := addPetFlags(fs)
	if err := c.parse(fs, args); err != nil {
		return 0, nil, err
	}
	if err := required(fs, "id", "name", "type", "age"); err != nil {
		return 0, nil, err
	}
	k, err := c.authKey(ctx, *email, *key)
	if err != nil {
		return 0, nil, err
	}
	return c.client.UpdatePet(ctx, k, *id, *pet.name, *pet.animalType, *pet.age)
}

func deleteCommand(ctx context.Context, c *cli, args []string) (int, petfriends.Body, error) {
	fs, email, key := c.newFlags("delete")
	id := fs.String("id", "", "pet id")
	if err := c.parse(fs, args); err != nil {
		return 0, nil, err
	}
	if err := required(fs, "id"); err != nil {
		return 0, nil, err
	}
	k, err := c.authKey(ctx, *email, *key)
	if err != nil {
		return 0, nil, err
	}
	return c.client.DeletePet(ctx, k, *id)
}

func photoCommand(ctx context.Context, c *cli, args []string) (int, petfriends.Body, error) {
	fs, email, key := c.newFlags("photo")
	id := fs.String("id", "", "pet id")
	photo := fs.String("photo", "", "path to the photo file")
	if err := c.parse(fs, args); err != nil {
		return 0, nil, err
	}
	if err := required(fs, "id", "photo"); err != nil {
		return 0, nil, err
	}
	k, err := c.authKey(ctx, *email, *key)
	if err != nil {
		return 0, nil, err
	}
	return c.client.SetPhoto(ctx, k, *id, *photo)
}
