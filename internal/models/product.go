package models

import "encoding/json"

// Product is the canonical product shape used everywhere inside the
// service. The commerce backend is not consistent about field names, so
// all product JSON passes through UnmarshalJSON below and nothing else.
type Product struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Price         int64  `json:"price"`
	OriginalPrice int64  `json:"original_price"`
	Image         string `json:"image"`
	Category      string `json:"category"`
	Description   string `json:"description"`
	Stock         int    `json:"stock"`
	SellerName    string `json:"seller_name"`
}

// rawProduct accepts every upstream spelling of each field. Older catalog
// rows use hprice/category1/imageUrl, newer ones original_price/category/
// image_url.
type rawProduct struct {
	ID       json.Number `json:"id"`
	Name     string      `json:"name"`
	Title    string      `json:"title"`
	Price    json.Number `json:"price"`
	HPrice   json.Number `json:"hprice"`
	OrigCC   json.Number `json:"originalPrice"`
	OrigSC   json.Number `json:"original_price"`
	Image    string      `json:"image"`
	ImageCC  string      `json:"imageUrl"`
	ImageSC  string      `json:"image_url"`
	Category string      `json:"category"`
	Cat1     string      `json:"category1"`
	Desc     string      `json:"description"`
	Stock    json.Number `json:"stock"`
	Seller   string      `json:"seller_name"`
}

// UnmarshalJSON normalizes upstream product JSON into the canonical
// struct. Defaulting is total: missing numbers become 0, the original
// price falls back to the sale price, and the first non-empty spelling
// of each aliased field wins.
func (p *Product) UnmarshalJSON(data []byte) error {
	var raw rawProduct
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	p.ID = raw.ID.String()
	p.Name = firstNonEmpty(raw.Name, raw.Title)
	p.Price = numberToInt64(raw.Price)
	p.OriginalPrice = numberToInt64(raw.HPrice)
	if p.OriginalPrice == 0 {
		p.OriginalPrice = numberToInt64(raw.OrigCC)
	}
	if p.OriginalPrice == 0 {
		p.OriginalPrice = numberToInt64(raw.OrigSC)
	}
	if p.OriginalPrice == 0 {
		p.OriginalPrice = p.Price
	}
	p.Image = firstNonEmpty(raw.Image, raw.ImageCC, raw.ImageSC)
	p.Category = firstNonEmpty(raw.Category, raw.Cat1)
	p.Description = raw.Desc
	p.Stock = int(numberToInt64(raw.Stock))
	p.SellerName = raw.Seller

	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func numberToInt64(n json.Number) int64 {
	if n == "" {
		return 0
	}
	if i, err := n.Int64(); err == nil {
		return i
	}
	if f, err := n.Float64(); err == nil {
		return int64(f)
	}
	return 0
}
