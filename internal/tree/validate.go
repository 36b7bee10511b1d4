package tree

import (
	"fmt"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/goliatone/go-sitekit/internal/expression"
)

var (
	identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_\-]*$`)
	keyFieldPattern   = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_\-]*(\.[A-Za-z0-9_\-]+)*$`)
)

// reserved frame names that an alias may not shadow
var reservedAliases = []any{"content", "$index", "$parent"}

// Validate checks the node shape once, at load time. Errors are
// validation.Errors keyed by field, nested through children.
func (n *Node) Validate() error {
	if n == nil {
		return nil
	}
	return validation.ValidateStruct(n,
		validation.Field(&n.Type, validation.Required, validation.Match(identifierPattern)),
		validation.Field(&n.Repeat, validation.By(pathExpression)),
		validation.Field(&n.Condition, validation.By(pathExpression)),
		validation.Field(&n.Key,
			validation.Match(keyFieldPattern),
			validation.When(strings.TrimSpace(n.Repeat) == "", validation.Empty.Error("key requires repeat")),
		),
		validation.Field(&n.As,
			validation.Match(identifierPattern),
			validation.NotIn(reservedAliases...),
			validation.When(strings.TrimSpace(n.Repeat) == "", validation.Empty.Error("as requires repeat")),
		),
		validation.Field(&n.Children),
	)
}

// ValidateList validates nodes, keying errors by index.
func ValidateList(nodes []*Node) error {
	return validation.Validate(nodes)
}

func pathExpression(value any) error {
	raw, _ := value.(string)
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	if _, ok := expression.ParsePath(raw); !ok {
		return fmt.Errorf("must be a single path expression")
	}
	return nil
}
