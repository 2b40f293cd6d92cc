// Package querybuilder composes parameterized SQL for single-table CRUD
// statements and runs them over one lazily opened connection.
//
// Identifiers (table, column and order-by names) cannot be bound as
// parameters, so every one of them is checked against ^[A-Za-z0-9_-]+$
// before it is written into the statement text. Values are always bound.
//
// The builder does not retry, does not manage transactions and does not
// migrate schemas. Each call is a single statement.
package querybuilder
