package preset

import (
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

var idPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_\-]*$`)

func (p *Preset) Validate() error {
	if p == nil {
		return nil
	}
	return validation.ValidateStruct(p,
		validation.Field(&p.ID, validation.Required, validation.Match(idPattern)),
		validation.Field(&p.Chrome),
		validation.Field(&p.Pages, validation.Required),
	)
}

func (c Chrome) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Regions),
		validation.Field(&c.Overlays),
	)
}

func (r *Region) Validate() error {
	if r == nil || r.Hidden {
		return nil
	}
	if r.Root == nil {
		return validation.NewError("validation_region_empty", "region must be a node tree or hidden")
	}
	return r.Root.Validate()
}

func (p *Page) Validate() error {
	if p == nil {
		return nil
	}
	return validation.ValidateStruct(p,
		validation.Field(&p.ID, validation.Required, validation.Match(idPattern)),
		validation.Field(&p.Sections),
	)
}
