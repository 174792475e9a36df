// Command manager edits the CMS menu from a terminal with the manager
// credentials from the config.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"bistro/internal/catalog"
	"bistro/internal/cms"
	"bistro/internal/config"
	"bistro/internal/export"
	"bistro/internal/logging"
	"bistro/internal/models"
	"bistro/internal/service"

	"github.com/rs/zerolog"
)

const usage = `usage: manager <command> [flags]

commands:
  list    [-category NAME]
  add     -name NAME -price PRICE -category NAME [-description TEXT] [-image FILE]
  update  -id ID -name NAME -price PRICE -category NAME [-description TEXT] [-image FILE]
  delete  -id ID
  export  [-dir DIR]
`

var errUsage = errors.New("invalid usage")

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprint(os.Stderr, usage)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type app struct {
	cfg    *config.Config
	client *cms.Client
	menu   *service.MenuService
	logger *zerolog.Logger
	out    io.Writer
}

func run(args []string, out io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	if closer != nil {
		defer closer.Close()
	}
	logger = logging.Component(logger, "manager")

	client := cms.NewClient(cfg.CMS, logger)
	a := &app{
		cfg:    cfg,
		client: client,
		menu:   service.NewMenuService(client, nil, nil, logger),
		logger: logger,
		out:    out,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	switch args[0] {
	case "list":
		return a.list(ctx, args[1:])
	case "add":
		return a.save(ctx, args[1:], false)
	case "update":
		return a.save(ctx, args[1:], true)
	case "delete":
		return a.delete(ctx, args[1:])
	case "export":
		return a.export(ctx, args[1:])
	default:
		return fmt.Errorf("unknown command %q: %w", args[0], errUsage)
	}
}

func (a *app) token(ctx context.Context) (string, error) {
	if a.cfg.CMS.Identifier == "" || a.cfg.CMS.Password == "" {
		return "", fmt.Errorf("cms.identifier and cms.password must be set")
	}
	auth, err := a.client.Login(ctx, a.cfg.CMS.Identifier, a.cfg.CMS.Password)
	if err != nil {
		return "", fmt.Errorf("login: %w", err)
	}
	return auth.JWT, nil
}

func (a *app) list(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	category := fs.String("category", "", "only this category")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	items, err := a.menu.List(ctx)
	if err != nil {
		return err
	}
	if *category != "" {
		items = catalog.FilterByCategory(items, *category)
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tCATEGORY\tPRICE")
	for _, it := range items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", it.ID, it.Name, it.Category, it.DisplayPrice())
	}
	fmt.Fprintf(tw, "\t\t\t%d items\n", len(items))
	return tw.Flush()
}

func (a *app) save(ctx context.Context, args []string, update bool) error {
	name := "add"
	if update {
		name = "update"
	}
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	var (
		id          = fs.String("id", "", "menu item id")
		itemName    = fs.String("name", "", "item name")
		price       = fs.String("price", "", "price, e.g. 5.99 or €5.99")
		category    = fs.String("category", "", "category")
		description = fs.String("description", "", "description")
		imagePath   = fs.String("image", "", "image file to upload")
	)
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if update && strings.TrimSpace(*id) == "" {
		return fmt.Errorf("-id is required: %w", errUsage)
	}
	if !update {
		*id = ""
	}

	input := models.MenuItemInput{
		Name:        *itemName,
		Price:       *price,
		Category:    *category,
		Description: *description,
	}
	// Форма проверяется до логина.
	if _, err := service.NormalizeInput(input); err != nil {
		return err
	}

	var image *service.ImageUpload
	if *imagePath != "" {
		f, err := os.Open(*imagePath)
		if err != nil {
			return fmt.Errorf("open image: %w", err)
		}
		defer f.Close()
		image = &service.ImageUpload{Filename: filepath.Base(*imagePath), Data: f}
	}

	token, err := a.token(ctx)
	if err != nil {
		return err
	}
	item, err := a.menu.Save(ctx, token, *id, input, image)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "saved %s: %s (%s) %s\n", item.ID, item.Name, item.Category, item.DisplayPrice())
	return nil
}

func (a *app) delete(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("delete", flag.ContinueOnError)
	id := fs.String("id", "", "menu item id")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if strings.TrimSpace(*id) == "" {
		return fmt.Errorf("-id is required: %w", errUsage)
	}

	token, err := a.token(ctx)
	if err != nil {
		return err
	}
	if err := a.menu.Delete(ctx, token, *id); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "deleted %s\n", *id)
	return nil
}

func (a *app) export(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	dir := fs.String("dir", a.cfg.Exports.Path, "output directory")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	items, err := a.menu.List(ctx)
	if err != nil {
		return err
	}
	path, err := export.SaveMenu(*dir, items, time.Now())
	if err != nil {
		return err
	}
	a.logger.Info().Str("path", path).Int("items", len(items)).Msg("menu exported")
	fmt.Fprintln(a.out, path)
	return nil
}
