// Package seed fills an empty store with a demo catalog, staff accounts and
// a few historical orders.
package seed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/delivery_shop/internal/hash"
	"github.com/Skotchmaster/delivery_shop/internal/logging"
	"github.com/Skotchmaster/delivery_shop/internal/models"
	"github.com/Skotchmaster/delivery_shop/internal/repo"
)

type variant struct {
	color, size string
	price       int64
	stock       int
}

type product struct {
	title, description, image, category string
	price                               int64
	rating                              float64
	variants                            []variant
}

var products = []product{
	{
		title:       "Arctic Chill 1.5 Ton Split AC",
		description: "Energy efficient split AC with advanced cooling technology and low noise operation.",
		image:       "https://i.imgur.com/8yUf7UL.jpg",
		category:    "Air Conditioner",
		price:       32999,
		rating:      4.5,
		variants: []variant{
			{"White", "1 Ton", 29999, 15}, {"White", "1.5 Ton", 32999, 20}, {"White", "2 Ton", 36999, 10},
			{"Silver", "1 Ton", 30999, 8}, {"Silver", "1.5 Ton", 33999, 12}, {"Silver", "2 Ton", 37999, 7},
		},
	},
	{
		title:       "BreezeMaster Ceiling Fan",
		description: "High-speed ceiling fan with 5 speed settings and an energy efficient motor.",
		image:       "https://i.imgur.com/NKDdASM.jpg",
		category:    "Ceiling Fan",
		price:       2499,
		rating:      4.2,
		variants: []variant{
			{"Brown", "48 inch", 2499, 25}, {"Brown", "56 inch", 2999, 15},
			{"White", "48 inch", 2499, 20}, {"White", "56 inch", 2999, 10},
			{"Black", "48 inch", 2699, 15}, {"Black", "56 inch", 3199, 8},
		},
	},
	{
		title:       "WindForce Tower Fan",
		description: "Slim oscillating tower fan with remote control and programmable timer.",
		image:       "https://i.imgur.com/vL9UhWe.jpg",
		category:    "Tower Fan",
		price:       3999,
		rating:      4.0,
		variants: []variant{
			{"Black", "36 inch", 3999, 30}, {"Black", "42 inch", 4599, 20},
			{"White", "36 inch", 3999, 25}, {"White", "42 inch", 4599, 15},
		},
	},
	{
		title:       "DeskCool Table Fan",
		description: "Compact table fan with adjustable tilt and wide oscillation.",
		image:       "https://i.imgur.com/RAU7Z6f.jpg",
		category:    "Table Fan",
		price:       1499,
		rating:      4.3,
		variants: []variant{
			{"Blue", "12 inch", 1499, 40}, {"Blue", "16 inch", 1899, 30},
			{"White", "12 inch", 1499, 35}, {"White", "16 inch", 1899, 25},
			{"Black", "12 inch", 1599, 20}, {"Black", "16 inch", 1999, 15},
		},
	},
	{
		title:       "PolarFrost Inverter AC",
		description: "Inverter AC with Wi-Fi connectivity and smart temperature control.",
		image:       "https://i.imgur.com/sn4ofDi.jpg",
		category:    "Air Conditioner",
		price:       44999,
		rating:      4.7,
		variants: []variant{
			{"White", "1 Ton", 44999, 10}, {"White", "1.5 Ton", 49999, 15}, {"White", "2 Ton", 54999, 8},
			{"Gold", "1 Ton", 46999, 7}, {"Gold", "1.5 Ton", 51999, 12}, {"Gold", "2 Ton", 56999, 5},
		},
	},
}

type account struct {
	name, email, password, phone string
	role                         models.Role
}

var accounts = []account{
	{"John Doe", "john@example.com", "password123", "555-1234", models.RoleCustomer},
	{"Admin User", "admin@coolgarmi.com", "admin123", "555-5678", models.RoleAdmin},
	{"Rider One", "rider1@coolgarmi.com", "rider123", "555-9101", models.RoleRider},
	{"Rider Two", "rider2@coolgarmi.com", "rider123", "555-1213", models.RoleRider},
}

var approved = map[string]models.Role{
	"admin@coolgarmi.com":  models.RoleAdmin,
	"rider1@coolgarmi.com": models.RoleRider,
	"rider2@coolgarmi.com": models.RoleRider,
}

type line struct {
	product, color, size string
	qty                  int
}

type pastOrder struct {
	rider  string
	status models.OrderStatus
	placed string
	lines  []line
}

var orders = []pastOrder{
	{"rider1@coolgarmi.com", models.StatusPaid, "2023-05-15", []line{{"Arctic Chill 1.5 Ton Split AC", "White", "1.5 Ton", 1}}},
	{"rider2@coolgarmi.com", models.StatusShipped, "2023-05-10", []line{{"BreezeMaster Ceiling Fan", "Brown", "48 inch", 2}}},
	{"rider1@coolgarmi.com", models.StatusInTransit, "2023-05-05", []line{
		{"DeskCool Table Fan", "Blue", "12 inch", 1}, {"WindForce Tower Fan", "Black", "36 inch", 1},
	}},
	{"rider2@coolgarmi.com", models.StatusDelivered, "2023-04-25", []line{{"PolarFrost Inverter AC", "White", "1 Ton", 1}}},
}

type Summary struct {
	Users, Products, Orders, Approved int
}

// Run seeds r. With reset every existing row is removed first; otherwise
// existing accounts are kept and the catalog is only created when empty.
func Run(ctx context.Context, r *repo.GormRepo, reset bool) (Summary, error) {
	l := logging.FromContext(ctx).With("svc", "seed")
	var sum Summary

	if reset {
		if err := r.Reset(ctx); err != nil {
			return sum, fmt.Errorf("reset: %w", err)
		}
		l.Info("seed_reset")
	}

	users := make(map[string]*models.User, len(accounts))
	for _, a := range accounts {
		u, err := r.GetUserByEmail(ctx, a.email)
		if err == nil {
			users[a.email] = u
			continue
		}
		if !errors.Is(err, repo.ErrNotFound) {
			return sum, err
		}
		pw, err := hash.HashPassword(a.password)
		if err != nil {
			return sum, err
		}
		u = &models.User{Name: a.name, Email: a.email, PasswordHash: pw, Role: a.role, Phone: a.phone}
		if err := r.CreateUser(ctx, u); err != nil {
			return sum, fmt.Errorf("create user %s: %w", a.email, err)
		}
		users[a.email] = u
		sum.Users++
	}

	for email, role := range approved {
		if err := r.UpsertApprovedEmail(ctx, email, role); err != nil {
			return sum, fmt.Errorf("approve %s: %w", email, err)
		}
		sum.Approved++
	}

	n, err := r.CountProducts(ctx)
	if err != nil {
		return sum, err
	}
	if n > 0 {
		l.Info("seed_catalog_skipped", "products", n)
		return sum, nil
	}

	byTitle := make(map[string]*models.Product, len(products))
	for _, p := range products {
		m := &models.Product{
			Title:       p.title,
			Description: p.description,
			Image:       p.image,
			Category:    p.category,
			Price:       decimal.NewFromInt(p.price),
			Rating:      p.rating,
		}
		sizes, colors := map[string]bool{}, map[string]bool{}
		for _, v := range p.variants {
			m.Variants = append(m.Variants, models.Variant{Color: v.color, Size: v.size, Price: decimal.NewFromInt(v.price), Stock: v.stock})
			if !sizes[v.size] {
				sizes[v.size] = true
				m.Sizes = append(m.Sizes, v.size)
			}
			if !colors[v.color] {
				colors[v.color] = true
				m.Colors = append(m.Colors, v.color)
			}
		}
		created, err := r.CreateProduct(ctx, m)
		if err != nil {
			return sum, fmt.Errorf("create product %q: %w", p.title, err)
		}
		byTitle[p.title] = created
		sum.Products++
	}

	customer := users["john@example.com"]
	for _, o := range orders {
		placed, err := time.Parse(time.DateOnly, o.placed)
		if err != nil {
			return sum, err
		}
		rider := users[o.rider]
		order := &models.Order{
			CustomerID:      customer.ID,
			CustomerName:    customer.Name,
			CustomerAddress: "123 Cooling St, Chill City, 10001",
			CustomerPhone:   customer.Phone,
			Status:          o.status,
			RiderID:         &rider.ID,
			RiderName:       rider.Name,
			PaymentMethod:   models.PaymentCard,
			CreatedAt:       placed,
			UpdatedAt:       placed,
		}
		total := decimal.Zero
		for _, ln := range o.lines {
			p := byTitle[ln.product]
			v, ok := p.FindVariant(ln.color, ln.size)
			if !ok {
				return sum, fmt.Errorf("seed order: %s has no variant %s/%s", ln.product, ln.color, ln.size)
			}
			order.Items = append(order.Items, models.OrderItem{
				ProductID: p.ID, ProductName: p.Title, Color: v.Color, Size: v.Size,
				Price: v.Price, Quantity: ln.qty, ImageURL: p.Image,
			})
			total = total.Add(v.Price.Mul(decimal.NewFromInt(int64(ln.qty))))
		}
		order.TotalAmount = total
		if _, err := r.CreateOrder(ctx, order); err != nil {
			return sum, fmt.Errorf("create order: %w", err)
		}
		sum.Orders++
	}

	l.Info("seed_success", "users", sum.Users, "products", sum.Products, "orders", sum.Orders)
	return sum, nil
}
