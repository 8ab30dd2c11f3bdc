// Package cart assembles one session's order.
//
// A Cart is an ordered mapping from product id to line. SetQuantity inserts,
// overwrites or removes a line; an overwrite keeps the line's original
// position. Totals are recomputed from the lines on every call and are never
// cached.
//
// Checkout turns a non-empty cart into a pending Order, appends it to the
// order store and only then clears the cart. A failed append leaves the cart
// untouched so the customer can retry.
//
// A Cart is not safe for concurrent use. Callers serialize access per
// session (see session.Locks).
package cart
