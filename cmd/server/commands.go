package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/Skotchmaster/grocery_shop/internal/config"
	"github.com/Skotchmaster/grocery_shop/internal/models"
	"github.com/Skotchmaster/grocery_shop/internal/repo"
	"github.com/Skotchmaster/grocery_shop/internal/service"
	pkgdb "github.com/Skotchmaster/grocery_shop/pkg/db"
	"github.com/Skotchmaster/grocery_shop/pkg/logging"
)

// withRepo opens and migrates the database for one-shot commands.
func withRepo(ctx context.Context, fn func(ctx context.Context, r *repo.GormRepo) error) error {
	cfg := config.Load()
	logger := newLogger(cfg)
	ctx = logging.IntoContext(ctx, logger)

	gdb, err := openDB(ctx, cfg)
	if err != nil {
		return err
	}
	defer pkgdb.Close(gdb)

	if err := repo.AutoMigrate(gdb); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return fn(ctx, repo.New(gdb))
}

func migrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Run database migration",
		Action: func(ctx context.Context, _ *cli.Command) error {
			return withRepo(ctx, func(ctx context.Context, _ *repo.GormRepo) error {
				logging.FromContext(ctx).Info("migration_complete")
				return nil
			})
		},
	}
}

func createAdminCommand() *cli.Command {
	return &cli.Command{
		Name:  "create-admin",
		Usage: "Create a user with the admin role",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "username", Required: true},
			&cli.StringFlag{Name: "password", Required: true},
			&cli.StringFlag{Name: "email"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return withRepo(ctx, func(ctx context.Context, r *repo.GormRepo) error {
				svc := &service.AuthService{Repo: r}
				user, err := svc.CreateAdmin(ctx, cmd.String("username"), cmd.String("password"), cmd.String("email"))
				if err != nil {
					return err
				}
				logging.FromContext(ctx).Info("admin_created", "user_id", user.ID, "username", user.Username)
				return nil
			})
		},
	}
}

type seedCategory struct {
	title    string
	icon     string
	products []service.NewProduct
}

var starterCatalog = []seedCategory{
	{title: "Fruit", icon: "fruit.png", products: []service.NewProduct{
		{Title: "Apples", Price: 120, Unit: models.UnitKilogram, Quantity: 50},
		{Title: "Bananas", Price: 90, Unit: models.UnitKilogram, Quantity: 40},
		{Title: "Cherries", Price: 300, Unit: models.UnitHalfKilogram, Quantity: 20},
	}},
	{title: "Vegetables", icon: "vegetables.png", products: []service.NewProduct{
		{Title: "Carrots", Price: 60, Unit: models.UnitKilogram, Quantity: 60},
		{Title: "Cucumbers", Price: 110, Unit: models.UnitKilogram, Quantity: 30},
	}},
	{title: "Bakery", icon: "bakery.png", products: []service.NewProduct{
		{Title: "Rye Bread", Price: 70, Unit: models.UnitPiece, Quantity: 25},
		{Title: "Croissant", Price: 95, Unit: models.UnitPiece, Quantity: 15},
	}},
}

func seedCommand() *cli.Command {
	return &cli.Command{
		Name:  "seed",
		Usage: "Insert a starter catalog into an empty database",
		Action: func(ctx context.Context, _ *cli.Command) error {
			return withRepo(ctx, func(ctx context.Context, r *repo.GormRepo) error {
				return seed(ctx, r)
			})
		},
	}
}

func seed(ctx context.Context, r *repo.GormRepo) error {
	l := logging.FromContext(ctx)

	existing, err := r.ListCategories(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		l.Info("seed_skipped", "reason", "catalog is not empty")
		return nil
	}

	svc := &service.CatalogService{Repo: r}
	var created int
	for _, sc := range starterCatalog {
		cat, err := svc.CreateCategory(ctx, sc.title, sc.icon, "")
		if err != nil {
			return err
		}
		for _, p := range sc.products {
			p.CategoryID = cat.ID
			if _, err := svc.CreateProduct(ctx, p); err != nil {
				if errors.Is(err, service.ErrConflict) {
					continue
				}
				return err
			}
			created++
		}
	}
	l.Info("seed_complete", "categories", len(starterCatalog), "products", created)
	return nil
}
