package model

import "github.com/shopspring/decimal"

// BuildProjections gộp page books với relation rows của chúng (đã fetch trong một query).
// Thứ tự books được giữ nguyên; readers theo thứ tự rows.
func BuildProjections(books []Book, rows []RelationRow) []BookProjection {
	byBook := make(map[int64][]RelationRow, len(books))
	for _, r := range rows {
		byBook[r.BookID] = append(byBook[r.BookID], r)
	}

	out := make([]BookProjection, 0, len(books))
	for i := range books {
		out = append(out, BuildProjection(&books[i], byBook[books[i].ID]))
	}
	return out
}

// BuildProjection - projection cho một book, rows phải thuộc về book đó
func BuildProjection(b *Book, rows []RelationRow) BookProjection {
	p := BookProjection{
		ID:         b.ID,
		Name:       b.Name,
		Price:      b.Price.StringFixed(2),
		AuthorName: b.AuthorName,
		OwnerName:  b.OwnerName,
		Readers:    make([]Reader, 0, len(rows)),
	}

	if b.Rating != nil {
		s := b.Rating.StringFixed(1)
		p.Rating = &s
	}
	if d := PriceWithDiscount(b.Price, b.Discount); d != nil {
		s := d.StringFixed(2)
		p.PriceWithDiscount = &s
	}

	for _, r := range rows {
		if r.Like {
			p.CountLikes++
		}
		p.Readers = append(p.Readers, Reader{FirstName: r.FirstName, LastName: r.LastName})
	}

	return p
}

// PriceWithDiscount = price - discount, nil khi không có discount
func PriceWithDiscount(price decimal.Decimal, discount *decimal.Decimal) *decimal.Decimal {
	if discount == nil {
		return nil
	}
	d := price.Sub(*discount)
	return &d
}
