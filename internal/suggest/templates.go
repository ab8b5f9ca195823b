package suggest

import (
	"bytes"
	"fmt"
	"text/template"
)

// TemplateName identifies a scaffold template.
type TemplateName string

const (
	TemplateFunction  TemplateName = "function"
	TemplateComponent TemplateName = "component"
	TemplateAPIRoute  TemplateName = "api-route"
)

// TemplateData is the input of every scaffold template.
type TemplateData struct {
	Symbol     string
	ImportPath string
	FilePath   string
}

const functionScaffold = `import { describe, it, expect } from 'vitest';
import { {{.Symbol}} } from '{{.ImportPath}}';

describe('{{.Symbol}}', () => {
  it('returns the expected result for typical input', () => {
    const result = {{.Symbol}}(/* typical input */);
    expect(result).toEqual(/* expected value */);
  });

  it('handles empty and invalid input', () => {
    expect(() => {{.Symbol}}(/* edge case */)).not.toThrow();
  });
});
`

const componentScaffold = `import { describe, it, expect } from 'vitest';
import { render, screen } from '@testing-library/react';
import { {{.Symbol}} } from '{{.ImportPath}}';

describe('<{{.Symbol}} />', () => {
  it('renders without crashing', () => {
    render(<{{.Symbol}} /* required props */ />);
    expect(screen.getByRole(/* role */)).toBeInTheDocument();
  });

  it('responds to user interaction', () => {
    render(<{{.Symbol}} /* props */ />);
    // interact, then assert on the rendered output
  });
});
`

const apiRouteScaffold = `import { describe, it, expect } from 'vitest';
import { {{.Symbol}} } from '{{.ImportPath}}';

describe('{{.FilePath}}', () => {
  it('responds 200 to a valid request', async () => {
    const response = await {{.Symbol}}(new Request('http://localhost/' /* valid body */));
    expect(response.status).toBe(200);
  });

  it('rejects an invalid request', async () => {
    const response = await {{.Symbol}}(new Request('http://localhost/' /* invalid body */));
    expect(response.status).toBeGreaterThanOrEqual(400);
  });
});
`

var scaffolds = template.Must(template.New("scaffolds").Parse(
	`{{define "function"}}` + functionScaffold + `{{end}}` +
		`{{define "component"}}` + componentScaffold + `{{end}}` +
		`{{define "api-route"}}` + apiRouteScaffold + `{{end}}`,
))

// TemplateFor selects the scaffold for a file kind.
func TemplateFor(k FileKind) TemplateName {
	switch k {
	case FileKindAPI:
		return TemplateAPIRoute
	case FileKindComponent:
		return TemplateComponent
	default:
		return TemplateFunction
	}
}

// Render executes the named scaffold.
func Render(name TemplateName, data TemplateData) (string, error) {
	var buf bytes.Buffer
	if err := scaffolds.ExecuteTemplate(&buf, string(name), data); err != nil {
		return "", fmt.Errorf("render %s scaffold: %w", name, err)
	}
	return buf.String(), nil
}
