package model

// ProductRow returns the product in sheet column order:
// id, name, price, category, status, image_url, brand.
func ProductRow(p Product) []string {
	return []string{
		p.ID,
		p.Name,
		p.Price.String(),
		string(p.Category),
		string(p.Status),
		p.ImageURL,
		p.Brand,
	}
}

// OrderRow returns the order in sheet column order:
// timestamp, customer_name, items_json, total, special_instructions, status.
func OrderRow(o Order) ([]string, error) {
	items, err := EncodeItems(o.Items)
	if err != nil {
		return nil, err
	}
	return []string{
		o.Timestamp(),
		o.CustomerName,
		items,
		o.Total.String(),
		o.SpecialInstructions,
		string(o.Status),
	}, nil
}
