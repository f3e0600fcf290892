package enums

import "fmt"

// ProductCategory is the fixed set of storefront categories.
type ProductCategory string

const (
	ProductCategoryMen         ProductCategory = "Men"
	ProductCategoryWomen       ProductCategory = "Women"
	ProductCategoryAccessories ProductCategory = "Accessories"
	ProductCategoryShoes       ProductCategory = "Shoes"
	ProductCategorySale        ProductCategory = "Sale"
)

var validProductCategories = []ProductCategory{
	ProductCategoryMen,
	ProductCategoryWomen,
	ProductCategoryAccessories,
	ProductCategoryShoes,
	ProductCategorySale,
}

// ProductCategories returns the categories in display order.
func ProductCategories() []ProductCategory {
	out := make([]ProductCategory, len(validProductCategories))
	copy(out, validProductCategories)
	return out
}

// String implements fmt.Stringer.
func (c ProductCategory) String() string {
	return string(c)
}

// IsValid reports whether the value is a known ProductCategory.
func (c ProductCategory) IsValid() bool {
	for _, candidate := range validProductCategories {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseProductCategory converts raw input into a ProductCategory. Matching is
// exact; "men" is not "Men".
func ParseProductCategory(value string) (ProductCategory, error) {
	for _, candidate := range validProductCategories {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid product category %q", value)
}
