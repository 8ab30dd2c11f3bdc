// Package model defines the domain records shared by every foodsheet
// component: products, cart lines, orders, money and the error taxonomy.
//
// # Money
//
// Amounts are integer minor units (1/100 baht). Floats never appear in stored
// records or in the items JSON, so totals computed from lines are exact.
//
// # Wire shapes
//
// ProductRow and OrderRow reproduce the spreadsheet row layout the admin tool
// has always used:
//
//	product: [id, name, price, category, status, image_url, brand]
//	order:   [timestamp, customer_name, items_json, total, special_instructions, status]
//
// items_json is produced by EncodeItems: keys sorted, strings NFC normalized,
// no HTML or non-ASCII escaping.
package model
