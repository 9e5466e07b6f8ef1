package model

import (
	"errors"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"book-catalog/internal/shared/utils"
)

// RelationRequest - body của PUT/PATCH /book_relation/:book_id.
// rate gửi null nghĩa là xóa rate.
type RelationRequest struct {
	Like        utils.Optional[bool] `json:"like"`
	InBookmarks utils.Optional[bool] `json:"in_bookmarks"`
	Rate        utils.Optional[int]  `json:"rate"`
}

// Validate: full = true (PUT) yêu cầu đủ ba field
func (r RelationRequest) Validate(full bool) error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Like, validation.By(flagRule(full))),
		validation.Field(&r.InBookmarks, validation.By(flagRule(full))),
		validation.Field(&r.Rate, validation.By(rateRule(full))),
	)
}

// ApplyTo ghi các field được gửi vào rel, trả về true nếu rate thay đổi
func (r RelationRequest) ApplyTo(rel *Relation) bool {
	if r.Like.Set {
		rel.Like = *r.Like.Value
	}
	if r.InBookmarks.Set {
		rel.InBookmarks = *r.InBookmarks.Value
	}
	if !r.Rate.Set || SameRate(rel.Rate, r.Rate.Value) {
		return false
	}

	if r.Rate.Value == nil {
		rel.Rate = nil
	} else {
		v := *r.Rate.Value
		rel.Rate = &v
	}
	return true
}

func flagRule(required bool) validation.RuleFunc {
	return func(value interface{}) error {
		o, _ := value.(utils.Optional[bool])
		if !o.Set {
			if required {
				return errors.New("is required")
			}
			return nil
		}
		if o.Value == nil {
			return errors.New("cannot be null")
		}
		return nil
	}
}

func rateRule(required bool) validation.RuleFunc {
	return func(value interface{}) error {
		o, _ := value.(utils.Optional[int])
		if !o.Set {
			if required {
				return errors.New("is required")
			}
			return nil
		}
		if o.Value == nil {
			return nil
		}
		return validation.Validate(*o.Value, validation.Min(MinRate), validation.Max(MaxRate))
	}
}
