// Package main loads demo sales, services, commission rules and targets, and prints
// access tokens for trying the API locally.
package main

import (
	"context"
	"fmt"
	"math/rand/v2"
	"os"
	"time"

	"github.com/spf13/cobra"

	"ganji/internal/app"
	"ganji/internal/config"
	appctx "ganji/internal/core/context"
	"ganji/internal/core/id"
	"ganji/internal/core/types"
	"ganji/internal/domain/commission"
	"ganji/internal/domain/target"
	"ganji/internal/infrastructure/auth"
	"ganji/internal/infrastructure/storage/postgres"
	"ganji/pkg/logger"
)

type options struct {
	salespeople int
	days        int
	perDay      int
	seed        uint64
	tokenTTL    time.Duration
}

func main() {
	var opts options

	cmd := &cobra.Command{
		Use:          "seed",
		Short:        "Load demo data into the ganji database",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(c *cobra.Command, _ []string) error {
			return run(c.Context(), opts)
		},
	}
	cmd.Flags().IntVar(&opts.salespeople, "salespeople", 3, "number of demo salespeople")
	cmd.Flags().IntVar(&opts.days, "days", 60, "days of history to generate, ending today")
	cmd.Flags().IntVar(&opts.perDay, "per-day", 4, "sales per salesperson per day (services are a quarter of that)")
	cmd.Flags().Uint64Var(&opts.seed, "seed", 1, "random seed; equal seeds produce equal data")
	cmd.Flags().DurationVar(&opts.tokenTTL, "token-ttl", 24*time.Hour, "lifetime of printed access tokens")

	if err := cmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log, err := logger.New(logger.Config{Level: "info", Development: true})
	if err != nil {
		return fmt.Errorf("initialize logger: %w", err)
	}
	defer log.Sync()
	ctx = logger.WithLogger(ctx, log)

	a, err := app.New(ctx, cfg, cfg.App.Name+"-seed")
	if err != nil {
		return err
	}
	defer a.Close()

	owners := make([]id.ID, opts.salespeople)
	for i := range owners {
		owners[i] = id.New()
	}

	gen := newGenerator(opts.seed, historyStart(time.Now(), a.Location, opts.days), opts.days)
	sales, services := gen.records(owners, opts.perDay)

	loader := postgres.NewBulkLoader(a.TxM)
	err = a.TxM.RunInTransaction(ctx, func(ctx context.Context) error {
		n, err := loader.Copy(ctx, "sales", saleColumns, sales)
		if err != nil {
			return err
		}
		log.Infow("sales loaded", "rows", n)

		n, err = loader.Copy(ctx, "services", serviceColumns, services)
		if err != nil {
			return err
		}
		log.Infow("services loaded", "rows", n)
		return nil
	})
	if err != nil {
		return err
	}

	if err := a.Commission.Create(ctx, defaultRule()); err != nil {
		return fmt.Errorf("create commission rule: %w", err)
	}

	for i, owner := range owners {
		_, err := a.Targets.Create(ctx, target.CreateInput{
			OwnerID:     owner,
			Name:        fmt.Sprintf("Monthly profit, salesperson %d", i+1),
			Metric:      target.MetricProfit,
			Period:      target.PeriodMonthly,
			TargetValue: types.MustMoney("400000"),
			BonusAmount: types.Some(types.MustMoney("25000")),
		})
		if err != nil {
			return fmt.Errorf("create target: %w", err)
		}
	}

	return printTokens(cfg.JWT, owners, opts.tokenTTL)
}

// historyStart returns local midnight of the first of days days ending today.
func historyStart(now time.Time, loc *time.Location, days int) time.Time {
	now = now.In(loc)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc).AddDate(0, 0, -(days - 1))
}

func defaultRule() *commission.Rule {
	return &commission.Rule{
		Name:   "Default tiered",
		Type:   commission.TypeTiered,
		Active: true,
		Tiers: []commission.Tier{
			{MinAmount: types.MustMoney("0"), MaxAmount: types.Some(types.MustMoney("500000")), RatePercentage: types.MustMoney("3")},
			{MinAmount: types.MustMoney("500000"), MaxAmount: types.Some(types.MustMoney("1000000")), RatePercentage: types.MustMoney("5")},
			{MinAmount: types.MustMoney("1000000"), RatePercentage: types.MustMoney("8")},
		},
	}
}

func printTokens(cfg config.JWTConfig, owners []id.ID, ttl time.Duration) error {
	jwtSvc := auth.NewJWTService(cfg)

	manager, _, err := jwtSvc.GenerateAccessToken(appctx.UserContext{
		UserID: "demo-manager",
		Roles:  []string{appctx.RoleManager},
	}, ttl)
	if err != nil {
		return err
	}
	fmt.Printf("manager token:\n  %s\n", manager)

	for _, owner := range owners {
		tok, _, err := jwtSvc.GenerateAccessToken(appctx.UserContext{
			UserID: owner.String(),
			Roles:  []string{appctx.RoleSalesperson},
		}, ttl)
		if err != nil {
			return err
		}
		fmt.Printf("salesperson %s token:\n  %s\n", owner, tok)
	}
	return nil
}

var (
	saleColumns = []string{
		"id", "salesman_id", "sale_date", "created_at", "unit_price", "cost_price",
		"quantity", "offers", "has_warranty", "product_name", "customer_name",
	}
	serviceColumns = []string{
		"id", "salesman_id", "service_date", "created_at", "issue_price", "service_price",
		"final_price", "offers", "device_name", "customer_name",
	}
)

var (
	products  = []string{"iPhone 15", "Galaxy S24", "Pixel 8", "Redmi Note 13", "AirPods Pro", "USB-C charger"}
	devices   = []string{"iPhone 12 screen", "Galaxy A54 battery", "Pixel 7 port", "iPad Air glass"}
	customers = []string{"Nadia Haddad", "Omar Saleh", "Lina Farah", "Karim Aoun", "Maya Khoury", "Rami Nassar"}
)

// generator produces deterministic demo rows for a run of consecutive days.
type generator struct {
	rng   *rand.Rand
	start time.Time
	days  int
}

func newGenerator(seed uint64, start time.Time, days int) *generator {
	return &generator{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)), start: start, days: days}
}

func (g *generator) records(owners []id.ID, perDay int) (sales, services [][]any) {
	for day := 0; day < g.days; day++ {
		date := g.start.AddDate(0, 0, day)
		for _, owner := range owners {
			for i := 0; i < perDay; i++ {
				sales = append(sales, g.sale(owner, date))
			}
			for i := 0; i < max(perDay/4, 1); i++ {
				services = append(services, g.service(owner, date))
			}
		}
		// Walk-in repairs nobody claimed.
		services = append(services, g.service(id.Nil(), date))
	}
	return sales, services
}

func (g *generator) sale(owner id.ID, date time.Time) []any {
	at := g.timeOn(date)
	cost := g.amount(20000, 400000)
	unit := cost.Add(g.amount(2000, 60000))

	var quantity any = int64(1 + g.rng.IntN(3))
	if g.rng.IntN(10) == 0 {
		quantity = nil
	}

	return []any{
		id.New(), owner, at, at,
		postgres.Numeric(types.Some(unit)),
		postgres.Numeric(types.Some(cost)),
		quantity,
		postgres.Numeric(g.maybeOffer()),
		g.rng.IntN(3) == 0,
		products[g.rng.IntN(len(products))],
		customers[g.rng.IntN(len(customers))],
	}
}

func (g *generator) service(owner id.ID, date time.Time) []any {
	at := g.timeOn(date)
	issue := g.amount(5000, 80000)
	svc := g.amount(2000, 20000)
	final := issue.Add(svc).Add(g.amount(0, 40000))

	var salesman any
	if !id.IsNil(owner) {
		salesman = owner
	}

	return []any{
		id.New(), salesman, at, at,
		postgres.Numeric(types.Some(issue)),
		postgres.Numeric(types.Some(svc)),
		postgres.Numeric(types.Some(final)),
		postgres.Numeric(g.maybeOffer()),
		devices[g.rng.IntN(len(devices))],
		customers[g.rng.IntN(len(customers))],
	}
}

func (g *generator) timeOn(date time.Time) time.Time {
	return date.Add(9*time.Hour + time.Duration(g.rng.IntN(11*60))*time.Minute)
}

// amount returns a whole amount in [lo, hi), rounded to hundreds.
func (g *generator) amount(lo, hi int64) types.Money {
	v := lo + g.rng.Int64N(hi-lo)
	return types.NewMoneyFromInt(v / 100 * 100)
}

func (g *generator) maybeOffer() types.OptionalMoney {
	if g.rng.IntN(4) != 0 {
		return types.OptionalMoney{}
	}
	return types.Some(g.amount(500, 5000))
}
