// Package schema holds the Avro schemas of exported marketplace records.
package schema

import "github.com/hamba/avro/v2"

// parse panics on an invalid schema text.
func parse(text string) avro.Schema {
	return avro.MustParse(text)
}
