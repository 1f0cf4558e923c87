// Package seed loads reference data (fleet, plans, riders, accessories, staff)
// that the rental core reads but never creates.
package seed

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"evrental-backend/internal/domain"
	"evrental-backend/internal/logger"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
)

type Vehicle struct {
	Code       string `yaml:"code"`
	Model      string `yaml:"model"`
	RentPerDay string `yaml:"rent_per_day"`
	Quantity   int32  `yaml:"quantity"`
}

type Plan struct {
	Name              string   `yaml:"name"`
	JoiningFee        string   `yaml:"joining_fee"`
	SecurityDeposit   string   `yaml:"security_deposit"`
	RequiredDocuments []string `yaml:"required_documents"`
}

type Rider struct {
	Name  string `yaml:"name"`
	Phone string `yaml:"phone"`
	Email string `yaml:"email"`
}

type Item struct {
	Kind   string `yaml:"kind"`
	Serial string `yaml:"serial"`
	Status string `yaml:"status"`
}

type Staff struct {
	Email    string `yaml:"email"`
	Name     string `yaml:"name"`
	Password string `yaml:"password"`
	Role     string `yaml:"role"`
}

// Data is the layout of a seed YAML file.
type Data struct {
	Vehicles []Vehicle `yaml:"vehicles"`
	Plans    []Plan    `yaml:"plans"`
	Riders   []Rider   `yaml:"riders"`
	Items    []Item    `yaml:"items"`
	Staff    []Staff   `yaml:"staff"`
}

// Load reads and parses a seed file.
func Load(path string) (*Data, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}
	var data Data
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}
	return &data, nil
}

// Memory is satisfied by the in-memory store's seed helpers.
type Memory interface {
	AddVehicle(domain.Vehicle) domain.Vehicle
	AddPlan(domain.Plan) domain.Plan
	AddRider(domain.Rider) domain.Rider
	AddItem(domain.MiscInventoryItem) domain.MiscInventoryItem
	AddStaff(domain.Staff) domain.Staff
}

type converted struct {
	vehicles []domain.Vehicle
	plans    []domain.Plan
	riders   []domain.Rider
	items    []domain.MiscInventoryItem
	staff    []domain.Staff
}

func money(field, raw string) (decimal.Decimal, error) {
	if raw == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s: %w", field, err)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("%s: must not be negative", field)
	}
	return domain.RoundMoney(d), nil
}

func (d *Data) convert(cost int) (*converted, error) {
	out := &converted{}
	for _, v := range d.Vehicles {
		rate, err := money("vehicle "+v.Code+" rent_per_day", v.RentPerDay)
		if err != nil {
			return nil, err
		}
		out.vehicles = append(out.vehicles, domain.Vehicle{
			Code: v.Code, Model: v.Model, RentPerDay: rate, Quantity: v.Quantity,
			Status: domain.StatusForQuantity(v.Quantity),
		})
	}
	for _, p := range d.Plans {
		joining, err := money("plan "+p.Name+" joining_fee", p.JoiningFee)
		if err != nil {
			return nil, err
		}
		deposit, err := money("plan "+p.Name+" security_deposit", p.SecurityDeposit)
		if err != nil {
			return nil, err
		}
		out.plans = append(out.plans, domain.Plan{
			Name: p.Name, JoiningFee: joining, SecurityDeposit: deposit, RequiredDocuments: p.RequiredDocuments,
		})
	}
	for _, r := range d.Riders {
		out.riders = append(out.riders, domain.Rider{Name: r.Name, Phone: r.Phone, Email: r.Email})
	}
	for _, it := range d.Items {
		status := domain.ItemStatus(it.Status)
		if status == "" {
			status = domain.ItemStatusInStock
		}
		out.items = append(out.items, domain.MiscInventoryItem{Kind: it.Kind, Serial: it.Serial, Status: status})
	}
	for _, s := range d.Staff {
		role := domain.StaffRole(s.Role)
		if role == "" {
			role = domain.StaffRoleOperator
		}
		if role != domain.StaffRoleAdmin && role != domain.StaffRoleOperator {
			return nil, fmt.Errorf("staff %s: unknown role %q", s.Email, s.Role)
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(s.Password), cost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password for %s: %w", s.Email, err)
		}
		out.staff = append(out.staff, domain.Staff{
			Email: s.Email, Name: s.Name, PasswordHash: string(hash), Role: role, Active: true,
		})
	}
	return out, nil
}

// IntoMemory populates an in-memory store.
func IntoMemory(store Memory, data *Data) error {
	return intoMemory(store, data, bcrypt.DefaultCost)
}

func intoMemory(store Memory, data *Data, cost int) error {
	c, err := data.convert(cost)
	if err != nil {
		return err
	}
	for _, v := range c.vehicles {
		store.AddVehicle(v)
	}
	for _, p := range c.plans {
		store.AddPlan(p)
	}
	for _, r := range c.riders {
		store.AddRider(r)
	}
	for _, it := range c.items {
		store.AddItem(it)
	}
	for _, s := range c.staff {
		store.AddStaff(s)
	}
	logger.Info("Seed data loaded into memory store",
		"vehicles", len(c.vehicles), "plans", len(c.plans), "riders", len(c.riders),
		"items", len(c.items), "staff", len(c.staff))
	return nil
}

// IntoPostgres inserts the seed rows in one transaction.
func IntoPostgres(ctx context.Context, db *sql.DB, data *Data) error {
	return intoPostgres(ctx, db, data, bcrypt.DefaultCost)
}

func intoPostgres(ctx context.Context, db *sql.DB, data *Data, cost int) error {
	c, err := data.convert(cost)
	if err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, v := range c.vehicles {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO vehicles (code, model, rent_per_day, quantity, status) VALUES ($1, $2, $3, $4, $5)`,
			v.Code, v.Model, v.RentPerDay, v.Quantity, v.Status,
		); err != nil {
			return fmt.Errorf("failed to create vehicle %s: %w", v.Code, err)
		}
	}
	for _, p := range c.plans {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO plans (name, joining_fee, security_deposit, required_documents) VALUES ($1, $2, $3, $4)`,
			p.Name, p.JoiningFee, p.SecurityDeposit, pq.Array(p.RequiredDocuments),
		); err != nil {
			return fmt.Errorf("failed to create plan %s: %w", p.Name, err)
		}
	}
	for _, r := range c.riders {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO riders (name, phone, email) VALUES ($1, $2, NULLIF($3, ''))`,
			r.Name, r.Phone, r.Email,
		); err != nil {
			return fmt.Errorf("failed to create rider %s: %w", r.Name, err)
		}
	}
	for _, it := range c.items {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO misc_inventory_items (kind, serial, status) VALUES ($1, $2, $3)`,
			it.Kind, it.Serial, it.Status,
		); err != nil {
			return fmt.Errorf("failed to create item %s: %w", it.Serial, err)
		}
	}
	for _, s := range c.staff {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO staff (email, name, password_hash, role, active) VALUES ($1, $2, $3, $4, $5)`,
			s.Email, s.Name, s.PasswordHash, s.Role, s.Active,
		); err != nil {
			return fmt.Errorf("failed to create staff %s: %w", s.Email, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	logger.Info("Seed data inserted",
		"vehicles", len(c.vehicles), "plans", len(c.plans), "riders", len(c.riders),
		"items", len(c.items), "staff", len(c.staff))
	return nil
}
