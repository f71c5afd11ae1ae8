package admin

import (
	"context"
	"time"

	"daztao-be/internal/order"
	"daztao-be/internal/product"

	"golang.org/x/sync/errgroup"
)

const (
	chartDays         = 7
	recentOrdersLimit = 5
	lowStockThreshold = 5
)

// Source is what the dashboard reads; *client.Client satisfies it.
type Source interface {
	ListProducts(ctx context.Context, includeHidden bool) ([]product.Product, error)
	ListOrders(ctx context.Context) ([]order.Order, error)
}

type DayRevenue struct {
	Date    string `json:"date"`
	Revenue int64  `json:"revenue"`
	Orders  int    `json:"orders"`
}

type Dashboard struct {
	Stats             order.Stats          `json:"stats"`
	TotalProducts     int                  `json:"totalProducts"`
	AverageOrderValue int64                `json:"averageOrderValue"`
	Chart             []DayRevenue         `json:"chart"`
	StatusCounts      map[order.Status]int `json:"statusCounts"`
	RecentOrders      []order.Order        `json:"recentOrders"`
	LowStock          []product.Product    `json:"lowStock"`
}

// LoadDashboard fetches products and orders concurrently.
func LoadDashboard(ctx context.Context, src Source, now time.Time) (*Dashboard, error) {
	var (
		products []product.Product
		orders   []order.Order
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		products, err = src.ListProducts(gctx, true)
		return err
	})
	g.Go(func() error {
		var err error
		orders, err = src.ListOrders(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return BuildDashboard(products, orders, now), nil
}

// BuildDashboard derives the dashboard from orders sorted newest first.
func BuildDashboard(products []product.Product, orders []order.Order, now time.Time) *Dashboard {
	d := &Dashboard{
		Stats:         order.Summarize(orders),
		TotalProducts: len(products),
		StatusCounts:  make(map[order.Status]int),
		Chart:         make([]DayRevenue, chartDays),
		LowStock:      []product.Product{},
	}

	today := now.UTC().Truncate(24 * time.Hour)
	index := make(map[string]int, chartDays)
	for i := range d.Chart {
		day := today.AddDate(0, 0, i-(chartDays-1)).Format(time.DateOnly)
		d.Chart[i].Date = day
		index[day] = i
	}

	paidOrders := 0
	for _, o := range orders {
		d.StatusCounts[o.Status]++
		if o.Status == order.StatusCancelled {
			continue
		}
		paidOrders++
		if i, ok := index[o.CreatedAt.UTC().Format(time.DateOnly)]; ok {
			d.Chart[i].Revenue += o.Amount
			d.Chart[i].Orders++
		}
	}
	if paidOrders > 0 {
		d.AverageOrderValue = d.Stats.Revenue / int64(paidOrders)
	}

	d.RecentOrders = orders[:min(len(orders), recentOrdersLimit)]

	for _, p := range products {
		if p.Status == product.StatusActive && p.Stock <= lowStockThreshold {
			d.LowStock = append(d.LowStock, p)
		}
	}
	return d
}
