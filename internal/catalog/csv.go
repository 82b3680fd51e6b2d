package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/multierr"

	"github.com/angelmondragon/activity-seeder/pkg/db/models"
	"github.com/angelmondragon/activity-seeder/pkg/enums"
	pkgerrors "github.com/angelmondragon/activity-seeder/pkg/errors"
	"github.com/angelmondragon/activity-seeder/pkg/types"
)

// File names expected by LoadDir.
const (
	VendorsFile  = "vendors.csv"
	UsersFile    = "users.csv"
	ProductsFile = "products.csv"
)

const listSeparator = "|"

var validate = validator.New()

type vendorRow struct {
	Name         string `csv:"name" validate:"required"`
	PostalCode   string `csv:"postal_code"`
	Street       string `csv:"street"`
	Zone         string `csv:"zone"`
	Avenue       string `csv:"avenue"`
	Phones       string `csv:"phones" validate:"required"`
	WeekdayHours string `csv:"weekday_hours"`
	WeekendHours string `csv:"weekend_hours"`
	HolidayHours string `csv:"holiday_hours"`
}

type userRow struct {
	Username string `csv:"username" validate:"required"`
	Password string `csv:"password" validate:"required"`
	Role     string `csv:"role" validate:"required"`
	Address  string `csv:"address"`
}

type productRow struct {
	Name        string `csv:"name" validate:"required"`
	Description string `csv:"description"`
	PrepMinutes string `csv:"prep_minutes" validate:"omitempty,number"`
	Ingredients string `csv:"ingredients"`
	Active      string `csv:"active" validate:"omitempty,oneof=true false TRUE FALSE True False 1 0"`
	Price       string `csv:"price" validate:"required,numeric"`
}

// headerAliases maps the column names of the legacy Spanish exports.
var headerAliases = map[string]string{
	"nombre_restaurante":      "name",
	"codigo_postal":           "postal_code",
	"calle":                   "street",
	"zona":                    "zone",
	"avenida":                 "avenue",
	"telefonos":               "phones",
	"horario_entre_semana":    "weekday_hours",
	"horario_fines_de_semana": "weekend_hours",
	"horario_asueto":          "holiday_hours",
	"nombre_usuario":          "username",
	"contrasenia":             "password",
	"tipo_usuario":            "role",
	"direccion":               "address",
	"nombre":                  "name",
	"descripcion":             "description",
	"tiempo_preparacion":      "prep_minutes",
	"ingredientes":            "ingredients",
	"esactivo":                "active",
	"precio":                  "price",
}

// LoadDir reads vendors.csv, users.csv and products.csv from dir.
func LoadDir(dir string) (*Catalog, error) {
	var c Catalog
	var err error
	if c.Vendors, err = readFile(filepath.Join(dir, VendorsFile), parseVendor); err != nil {
		return nil, err
	}
	if c.Users, err = readFile(filepath.Join(dir, UsersFile), parseUser); err != nil {
		return nil, err
	}
	if c.Products, err = readFile(filepath.Join(dir, ProductsFile), parseProduct); err != nil {
		return nil, err
	}
	return &c, nil
}

func readFile[R any, T any](path string, parse func(R) (T, error)) ([]T, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeConfig, err, "open catalog file").
			WithDetails(map[string]any{"file": path})
	}
	defer f.Close()
	return ReadRows(f, filepath.Base(path), parse)
}

// ReadRows decodes a CSV stream with a header row into documents. Every bad
// row is reported, not only the first one.
func ReadRows[R any, T any](r io.Reader, name string, parse func(R) (T, error)) ([]T, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read csv header").
			WithDetails(map[string]any{"file": name})
	}
	columns := columnIndex(header)

	var (
		out  []T
		errs error
		line = 1
	)
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("line %d: %w", line, err))
			continue
		}

		var row R
		decodeRow(&row, columns, record)
		if err := validate.Struct(row); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("line %d: %w", line, err))
			continue
		}
		doc, err := parse(row)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("line %d: %w", line, err))
			continue
		}
		out = append(out, doc)
	}
	if errs != nil {
		problems := make([]string, 0)
		for _, e := range multierr.Errors(errs) {
			problems = append(problems, e.Error())
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, errs, fmt.Sprintf("%s has invalid rows", name)).
			WithDetails(map[string]any{"file": name, "problems": problems})
	}
	return out, nil
}

func columnIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if alias, ok := headerAliases[key]; ok {
			key = alias
		}
		idx[key] = i
	}
	return idx
}

// decodeRow copies record cells into the string fields of row by csv tag.
func decodeRow(row any, columns map[string]int, record []string) {
	v := reflect.ValueOf(row).Elem()
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		col, ok := columns[t.Field(i).Tag.Get("csv")]
		if !ok || col >= len(record) {
			continue
		}
		v.Field(i).SetString(strings.TrimSpace(record[col]))
	}
}

func splitList(value string) []string {
	out := make([]string, 0)
	for _, part := range strings.Split(value, listSeparator) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseVendor(r vendorRow) (models.Vendor, error) {
	return models.Vendor{
		Name: r.Name,
		Location: types.Location{
			PostalCode: r.PostalCode,
			Street:     r.Street,
			Zone:       r.Zone,
			Avenue:     r.Avenue,
		},
		Phones: splitList(r.Phones),
		Hours: types.OpeningHours{
			Weekdays: r.WeekdayHours,
			Weekends: r.WeekendHours,
			Holidays: r.HolidayHours,
		},
	}, nil
}

func parseUser(r userRow) (models.User, error) {
	role, err := enums.ParseUserRole(r.Role)
	if err != nil {
		return models.User{}, err
	}
	return models.User{
		Username: r.Username,
		Password: r.Password,
		Role:     role,
		Address:  r.Address,
	}, nil
}

func parseProduct(r productRow) (models.Product, error) {
	price, err := types.ParseMoney(r.Price)
	if err != nil {
		return models.Product{}, err
	}
	if price.IsNegative() {
		return models.Product{}, fmt.Errorf("price %s is negative", r.Price)
	}
	prep := 0
	if r.PrepMinutes != "" {
		if prep, err = strconv.Atoi(r.PrepMinutes); err != nil {
			return models.Product{}, fmt.Errorf("prep_minutes: %w", err)
		}
	}
	active := true
	if r.Active != "" {
		if active, err = strconv.ParseBool(r.Active); err != nil {
			return models.Product{}, fmt.Errorf("active: %w", err)
		}
	}
	return models.Product{
		Name:        r.Name,
		Description: r.Description,
		PrepMinutes: prep,
		Ingredients: splitList(r.Ingredients),
		Active:      active,
		Price:       price,
	}, nil
}
