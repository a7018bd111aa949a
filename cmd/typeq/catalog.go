package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bawdo/typeq/schema"
)

// Author and Book form the demo catalog the samples are written against.
type Author struct {
	ID      int64
	Name    string
	Country string
}

var (
	AuthorID      = schema.NewColumn("ID", func(a *Author) *int64 { return &a.ID })
	AuthorName    = schema.NewColumn("Name", func(a *Author) *string { return &a.Name })
	AuthorCountry = schema.NewColumn("Country", func(a *Author) *string { return &a.Country }, schema.Nullable())
)

func (Author) Describe(b *schema.Builder[Author]) {
	b.Columns(AuthorID, AuthorName, AuthorCountry).PrimaryKey(AuthorID)
}

type Book struct {
	ID          uuid.UUID
	Title       string
	AuthorID    int64
	Price       decimal.Decimal
	PublishedAt time.Time
	DeletedAt   time.Time
}

var (
	BookID          = schema.NewColumn("ID", func(b *Book) *uuid.UUID { return &b.ID })
	BookTitle       = schema.NewColumn("Title", func(b *Book) *string { return &b.Title })
	BookAuthorID    = schema.NewColumn("AuthorID", func(b *Book) *int64 { return &b.AuthorID })
	BookPrice       = schema.NewColumn("Price", func(b *Book) *decimal.Decimal { return &b.Price })
	BookPublishedAt = schema.NewColumn("PublishedAt", func(b *Book) *time.Time { return &b.PublishedAt })
	BookDeletedAt   = schema.NewColumn("DeletedAt", func(b *Book) *time.Time { return &b.DeletedAt }, schema.Nullable())
)

func (Book) Describe(b *schema.Builder[Book]) {
	b.Columns(BookID, BookTitle, BookAuthorID, BookPrice, BookPublishedAt, BookDeletedAt).
		PrimaryKey(BookID).
		ForeignKey("BOOK_AUTHOR_FK", schema.Ref(BookAuthorID, AuthorID))
}

// bookID derives a stable key from a title so seeded rows are reproducible.
func bookID(title string) uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(title))
}

var seedAuthors = []Author{
	{ID: 1, Name: "Janet Frame", Country: "NZ"},
	{ID: 2, Name: "Patrick White", Country: "AU"},
	{ID: 3, Name: "Anonymous"},
}

func seedBooks() []Book {
	day := func(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }
	return []Book{
		{ID: bookID("Owls Do Cry"), Title: "Owls Do Cry", AuthorID: 1, Price: decimal.RequireFromString("24.50"), PublishedAt: day(1957, 1, 1)},
		{ID: bookID("Faces in the Water"), Title: "Faces in the Water", AuthorID: 1, Price: decimal.RequireFromString("19.99"), PublishedAt: day(1961, 1, 1)},
		{ID: bookID("Voss"), Title: "Voss", AuthorID: 2, Price: decimal.RequireFromString("31.00"), PublishedAt: day(1957, 6, 1)},
		{ID: bookID("Riders in the Chariot"), Title: "Riders in the Chariot", AuthorID: 2, Price: decimal.RequireFromString("12.00"), PublishedAt: day(1961, 9, 1)},
	}
}

// createTableSQL renders the DDL for a mapped table in db's dialect.
func createTableSQL(db *schema.Database, t *schema.TableInfo) string {
	env := db.Env()
	defs := make([]string, 0, len(t.Columns)+len(t.ForeignKeys)+1)
	for _, c := range t.Columns {
		def := db.Dialect().QuoteIdent(c.Name) + " " + c.Type.SQLType(env)
		if !c.Nullable {
			def += " not null"
		}
		defs = append(defs, def)
	}
	if len(t.PrimaryKey) > 0 {
		defs = append(defs, "primary key ("+columnList(db, t.PrimaryKey)+")")
	}
	for _, fk := range t.ForeignKeys {
		parent, err := fk.Parent(db)
		if err != nil {
			continue
		}
		cols, err := fk.ParentColumns(db)
		if err != nil {
			continue
		}
		defs = append(defs, fmt.Sprintf("constraint %s foreign key (%s) references %s (%s)",
			fk.Name, columnList(db, fk.Columns), parent.QualifiedName(), columnList(db, cols)))
	}
	return "create table " + t.QualifiedName() + " (" + strings.Join(defs, ", ") + ")"
}

func columnList(db *schema.Database, cols []*schema.Column) string {
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = db.Dialect().QuoteIdent(c.Name)
	}
	return strings.Join(names, ", ")
}

// catalogDDL returns the create statements for the demo catalog, parents first.
func catalogDDL(db *schema.Database) ([]string, error) {
	authors, err := schema.TableFor[Author](db)
	if err != nil {
		return nil, err
	}
	books, err := schema.TableFor[Book](db)
	if err != nil {
		return nil, err
	}
	return []string{createTableSQL(db, authors.TableInfo), createTableSQL(db, books.TableInfo)}, nil
}
