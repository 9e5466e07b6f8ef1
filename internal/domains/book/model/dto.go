package model

import (
	"errors"
	"net/url"
	"strconv"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/shopspring/decimal"

	"book-catalog/internal/shared/utils"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100

	maxNameLength = 255
)

// NUMERIC(7,2)
var maxMoney = decimal.RequireFromString("99999.99")

// ============ REQUESTS ============

// BookRequest - POST /books và PUT /books/:id.
// PUT là full replace: discount vắng mặt được ghi thành NULL.
type BookRequest struct {
	Name       string           `json:"name"`
	Price      *decimal.Decimal `json:"price"`
	Discount   *decimal.Decimal `json:"discount"`
	AuthorName string           `json:"author_name"`
}

func (r BookRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	r.AuthorName = strings.TrimSpace(r.AuthorName)

	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, maxNameLength)),
		validation.Field(&r.Price, validation.NotNil, validation.By(moneyRule)),
		validation.Field(&r.Discount, validation.By(moneyRule)),
		validation.Field(&r.AuthorName, validation.Required, validation.Length(1, maxNameLength)),
	)
}

// ApplyTo ghi đè toàn bộ writable fields
func (r BookRequest) ApplyTo(b *Book) {
	b.Name = strings.TrimSpace(r.Name)
	b.Price = *r.Price
	b.Discount = r.Discount
	b.AuthorName = strings.TrimSpace(r.AuthorName)
}

// PatchBookRequest - PATCH /books/:id, chỉ field được gửi mới thay đổi
type PatchBookRequest struct {
	Name       utils.Optional[string]          `json:"name"`
	Price      utils.Optional[decimal.Decimal] `json:"price"`
	Discount   utils.Optional[decimal.Decimal] `json:"discount"`
	AuthorName utils.Optional[string]          `json:"author_name"`
}

func (r PatchBookRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.By(optionalText(false))),
		validation.Field(&r.Price, validation.By(optionalMoney(false))),
		validation.Field(&r.Discount, validation.By(optionalMoney(true))),
		validation.Field(&r.AuthorName, validation.By(optionalText(false))),
	)
}

func (r PatchBookRequest) ApplyTo(b *Book) {
	if r.Name.Set {
		b.Name = strings.TrimSpace(*r.Name.Value)
	}
	if r.Price.Set {
		b.Price = *r.Price.Value
	}
	if r.Discount.Set {
		b.Discount = r.Discount.Value
	}
	if r.AuthorName.Set {
		b.AuthorName = strings.TrimSpace(*r.AuthorName.Value)
	}
}

// ListBooksRequest - GET /books query, đã normalize
type ListBooksRequest struct {
	Price    *decimal.Decimal
	Search   string
	Ordering []string // chỉ chứa term hợp lệ, vd: ["-price", "author_name"]
	Page     int
	PageSize int
}

// orderingFields - field được phép sort, prefix "-" là descending
var orderingFields = map[string]bool{
	"price":       true,
	"author_name": true,
}

// NewListBooksRequest parse query params.
// ordering không hợp lệ bị bỏ qua; price/page/page_size sai format trả về validation.Errors.
func NewListBooksRequest(q url.Values) (ListBooksRequest, error) {
	req := ListBooksRequest{
		Search:   strings.TrimSpace(q.Get("search")),
		Ordering: parseOrdering(q.Get("ordering")),
		Page:     1,
		PageSize: DefaultPageSize,
	}
	errs := validation.Errors{}

	if raw := strings.TrimSpace(q.Get("price")); raw != "" {
		d, err := decimal.NewFromString(raw)
		if err != nil {
			errs["price"] = errors.New("must be a number")
		} else {
			req.Price = &d
		}
	}

	if raw := q.Get("page"); raw != "" {
		p, err := strconv.Atoi(raw)
		if err != nil || p < 1 {
			errs["page"] = errors.New("must be a positive integer")
		} else {
			req.Page = p
		}
	}

	if raw := q.Get("page_size"); raw != "" {
		s, err := strconv.Atoi(raw)
		if err != nil || s < 1 {
			errs["page_size"] = errors.New("must be a positive integer")
		} else {
			req.PageSize = min(s, MaxPageSize)
		}
	}

	if len(errs) > 0 {
		return req, errs
	}
	return req, nil
}

// Offset cho LIMIT/OFFSET
func (r ListBooksRequest) Offset() int {
	return (r.Page - 1) * r.PageSize
}

// CacheKey - key ổn định cho cùng một tập params trong một generation
func (r ListBooksRequest) CacheKey(gen int64) string {
	v := url.Values{}
	if r.Price != nil {
		v.Set("price", r.Price.String())
	}
	if r.Search != "" {
		v.Set("search", strings.ToLower(strings.Join(strings.Fields(r.Search), " ")))
	}
	if len(r.Ordering) > 0 {
		v.Set("ordering", strings.Join(r.Ordering, ","))
	}
	v.Set("page", strconv.Itoa(r.Page))
	v.Set("page_size", strconv.Itoa(r.PageSize))
	return generationPrefix(gen) + "list:" + v.Encode()
}

func parseOrdering(raw string) []string {
	var terms []string
	seen := map[string]bool{}
	for _, term := range strings.Split(raw, ",") {
		term = strings.TrimSpace(term)
		field := strings.TrimPrefix(term, "-")
		if !orderingFields[field] || seen[field] {
			continue
		}
		seen[field] = true
		terms = append(terms, term)
	}
	return terms
}

// ============ CACHE KEYS ============

// CacheKeyPrefix - mọi projection cache nằm dưới prefix này để invalidate bằng pattern
const CacheKeyPrefix = "books:"

// CacheKeyPattern dùng cho DeletePattern sau mỗi write
const CacheKeyPattern = CacheKeyPrefix + "*"

// GenerationKey - counter tăng sau mỗi write, nằm ngoài CacheKeyPattern
const GenerationKey = "gen:books"

func DetailCacheKey(id, gen int64) string {
	return generationPrefix(gen) + "detail:" + strconv.FormatInt(id, 10)
}

func generationPrefix(gen int64) string {
	return CacheKeyPrefix + "v" + strconv.FormatInt(gen, 10) + ":"
}

// ParseBookID - id trên URL phải là số nguyên dương
func ParseBookID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, ErrInvalidBookID
	}
	return id, nil
}

// ============ RULES ============

func moneyRule(value interface{}) error {
	d, _ := value.(*decimal.Decimal)
	if d == nil {
		return nil
	}
	return checkMoney(*d)
}

func checkMoney(d decimal.Decimal) error {
	if d.IsNegative() {
		return errors.New("must be no less than 0")
	}
	if !d.Equal(d.Truncate(2)) {
		return errors.New("must have no more than 2 decimal places")
	}
	if d.GreaterThan(maxMoney) {
		return errors.New("must be no greater than 99999.99")
	}
	return nil
}

func optionalMoney(nullable bool) validation.RuleFunc {
	return func(value interface{}) error {
		o, _ := value.(utils.Optional[decimal.Decimal])
		if !o.Set {
			return nil
		}
		if o.Value == nil {
			if nullable {
				return nil
			}
			return errors.New("cannot be null")
		}
		return checkMoney(*o.Value)
	}
}

func optionalText(nullable bool) validation.RuleFunc {
	return func(value interface{}) error {
		o, _ := value.(utils.Optional[string])
		if !o.Set {
			return nil
		}
		if o.Value == nil {
			if nullable {
				return nil
			}
			return errors.New("cannot be null")
		}
		return validation.Validate(strings.TrimSpace(*o.Value), validation.Required, validation.Length(1, maxNameLength))
	}
}
