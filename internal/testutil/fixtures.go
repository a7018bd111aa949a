package testutil

import (
	"time"

	"github.com/bawdo/typeq/dialect"
	"github.com/bawdo/typeq/schema"
)

// Manufacturer is the parent fixture table.
type Manufacturer struct {
	ID      int64
	Name    string
	Country string
}

var (
	ManufacturerID      = schema.NewColumn("ID", func(m *Manufacturer) *int64 { return &m.ID })
	ManufacturerName    = schema.NewColumn("Name", func(m *Manufacturer) *string { return &m.Name })
	ManufacturerCountry = schema.NewColumn("Country", func(m *Manufacturer) *string { return &m.Country }, schema.Nullable())
)

func (Manufacturer) Describe(b *schema.Builder[Manufacturer]) {
	b.Columns(ManufacturerID, ManufacturerName, ManufacturerCountry).
		PrimaryKey(ManufacturerID)
}

// Widget references Manufacturer and carries a soft-delete column.
type Widget struct {
	ID             int64
	Name           string
	ManufacturerID int64
	Price          float64
	DeletedAt      time.Time
}

var (
	WidgetID             = schema.NewColumn("ID", func(w *Widget) *int64 { return &w.ID })
	WidgetName           = schema.NewColumn("Name", func(w *Widget) *string { return &w.Name })
	WidgetManufacturerID = schema.NewColumn("ManufacturerID", func(w *Widget) *int64 { return &w.ManufacturerID })
	WidgetPrice          = schema.NewColumn("Price", func(w *Widget) *float64 { return &w.Price })
	WidgetDeletedAt      = schema.NewColumn("DeletedAt", func(w *Widget) *time.Time { return &w.DeletedAt }, schema.Nullable())
)

func (Widget) Describe(b *schema.Builder[Widget]) {
	b.Columns(WidgetID, WidgetName, WidgetManufacturerID, WidgetPrice, WidgetDeletedAt).
		PrimaryKey(WidgetID).
		ForeignKey("WIDGET_MANUFACTURER_FK", schema.Ref(WidgetManufacturerID, ManufacturerID))
}

// Part has no key relation to either other table.
type Part struct {
	ID   int64
	Code string
}

var (
	PartID   = schema.NewColumn("ID", func(p *Part) *int64 { return &p.ID }, schema.ReadOnly())
	PartCode = schema.NewColumn("Code", func(p *Part) *string { return &p.Code }, schema.Named("PART_CODE"))
)

func (Part) Describe(b *schema.Builder[Part]) {
	b.Name("PARTS").Columns(PartID, PartCode).PrimaryKey(PartID)
}

// NewDatabase returns a database on the ANSI dialect with no default schema.
func NewDatabase(opts ...schema.Option) *schema.Database {
	return schema.NewDatabase(opts...)
}

// NewDatabaseFor returns a database on d.
func NewDatabaseFor(d dialect.Dialect, opts ...schema.Option) *schema.Database {
	return schema.NewDatabase(append([]schema.Option{schema.WithDialect(d)}, opts...)...)
}
