/*
Package process implements the normalization run.

A Process walks a denormalized input depth first against a root schema:

	p := process.New(payload, "articles", registry.NewSchemas(users, comments, articles))
	out, err := p.Run()

For every record it meets, the run:
  - returns the identifier straight away when the same record (by reference)
    is already being processed, which terminates cycles
  - resolves dynamic properties against the original record
  - replaces every related property with the identifier(s) of the nested
    record(s)
  - merges the flattened copy into Output.Entities under the schema name and
    the stringified identifier

Inputs are never modified. Unresolved dynamic schema names do not fail the
run; they are reported in Output.Diagnostics and the raw value is kept.

A Process is single-use and not safe for concurrent use.
*/
package process
