/*
Package errors provides semantic error types for entitynorm.

Normalization errors are fatal to the call that triggers them:

	var (
	    ErrSchemaNotFound       = errors.New("schema not found")
	    ErrUnexpectedInput      = errors.New("unexpected input")
	    ErrUnexpectedModel      = errors.New("unexpected model")
	    ErrExpectedSchemaSingle = errors.New("expected single schema")
	    ErrTypeMismatch         = errors.New("type mismatch")
	)

The datastore layer adds ErrNotFound, ErrAlreadyExists, ErrInvalidInput and
ErrConditionFailed.

Usage:

	out, err := n.Normalize(payload, "articles")
	if err != nil {
	    if errors.IsSchemaNotFound(err) {
	        return fmt.Errorf("articles schema is not registered: %w", err)
	    }
	    return err
	}

Every typed error implements Is so wrapped errors still match their sentinel
through the standard errors.Is function or the IsXxx helpers.
*/
package errors
