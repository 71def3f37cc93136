package docxmerge

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Render opens the template at templatePath, resolves every placeholder of
// data in order and returns the rendered package bytes.
//
// A placeholder whose name does not occur in the template is skipped. An
// array value whose placeholder has no block is a no-op. Any parse or I/O
// failure aborts the call; the returned error is a *RenderError naming the
// stage that failed.
func (e *Engine) Render(ctx context.Context, templatePath string, data Data) ([]byte, error) {
	source, err := e.cache.Load(templatePath)
	if err != nil {
		return nil, newRenderError(StageOpen, templatePath, "", NewDocumentError("read", templatePath, err))
	}
	tmpl, err := NewTemplate(bytes.NewReader(source), int64(len(source)))
	if err != nil {
		return nil, newRenderError(StageOpen, templatePath, "", err)
	}
	return e.renderTemplate(ctx, tmpl, templatePath, data)
}

func (e *Engine) renderTemplate(ctx context.Context, tmpl *Template, label string, data Data) (out []byte, err error) {
	renderID := uuid.NewString()
	log := e.logger.With(zap.String("render_id", renderID), zap.String("template", label))
	start := time.Now()

	ctx, span := startRenderSpan(ctx, label, renderID, len(data))
	defer func() {
		if err != nil {
			log.Error("render failed", zap.Error(err), zap.String("stage", string(StageOf(err))))
		} else {
			log.Debug("render completed",
				zap.Duration("duration", time.Since(start)),
				zap.Int("bytes", len(out)))
		}
		endSpan(span, err)
	}()
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, newRenderError(StageExpand, label, "", RecoverError(r))
		}
	}()
	defer tmpl.Close()

	tmpl.tempDir = e.config.TempDir
	log.Debug("render starting", zap.Int("fields", len(data)))

	if err := e.merge(ctx, tmpl, data, log); err != nil {
		var re *RenderError
		if errors.As(err, &re) && re.Path == "" {
			re.Path = label
		}
		return nil, err
	}

	path, err := tmpl.Save()
	if err != nil {
		return nil, newRenderError(StageSave, label, "", err)
	}
	defer func() {
		if rmErr := os.Remove(path); rmErr != nil && !errors.Is(rmErr, fs.ErrNotExist) {
			log.Warn("failed to remove temporary output", zap.String("path", path), zap.Error(rmErr))
		}
	}()

	out, err = os.ReadFile(path)
	if err != nil {
		return nil, newRenderError(StageRead, label, "", err)
	}
	return out, nil
}

// Merge resolves every placeholder of data against tmpl in place, without
// saving. Fields are processed in order; before the first expansion the
// blocks of all array placeholders are checked for overlaps.
func (e *Engine) Merge(ctx context.Context, tmpl *Template, data Data) error {
	return e.merge(ctx, tmpl, data, e.logger)
}

func (e *Engine) merge(ctx context.Context, tmpl *Template, data Data, log *zap.Logger) error {
	if tmpl.closed {
		return newRenderError(StageExpand, "", "", ErrTemplateClosed)
	}

	// Values are converted only for names the template mentions, so data
	// keys without a placeholder never fail a render.
	values := make([]*Value, len(data))
	convert := func(i int) (Value, error) {
		if values[i] == nil {
			v, err := NewValue(data[i].Value)
			if err != nil {
				return Value{}, newRenderError(StageExpand, "", data[i].Name, err)
			}
			values[i] = &v
		}
		return *values[i], nil
	}

	var arrays []string
	for i, field := range data {
		if !strings.Contains(tmpl.Body(), field.Name) {
			continue
		}
		v, err := convert(i)
		if err != nil {
			return err
		}
		if v.IsSequence() {
			arrays = append(arrays, field.Name)
		}
	}
	if err := e.expander.CheckOverlaps(tmpl.Body(), arrays); err != nil {
		return newRenderError(StageExpand, "", "", err)
	}

	for i, field := range data {
		if err := ctx.Err(); err != nil {
			return newRenderError(StageExpand, "", field.Name, err)
		}
		if !tmpl.Contains(field.Name) {
			log.Debug("placeholder not in template", zap.String("placeholder", field.Name))
			continue
		}
		value, err := convert(i)
		if err != nil {
			return err
		}

		pairs, err := e.expandField(ctx, tmpl, field.Name, value)
		if err != nil {
			return newRenderError(StageExpand, "", field.Name, err)
		}

		replaced := 0
		for _, pair := range pairs {
			replaced += tmpl.SetValue(pair.Token, pair.Value)
		}
		log.Debug("placeholder resolved",
			zap.String("placeholder", field.Name),
			zap.Bool("array", value.IsSequence()),
			zap.Int("pairs", len(pairs)),
			zap.Int("replacements", replaced))
	}
	return nil
}

func (e *Engine) expandField(ctx context.Context, tmpl *Template, name string, value Value) (pairs Pairs, err error) {
	_, span := startExpandSpan(ctx, name, value)
	defer func() { endSpan(span, err) }()

	pairs, body, err := e.expander.Expand(tmpl.Body(), name, value)
	if err != nil {
		return nil, err
	}
	tmpl.SetBody(body)
	return pairs, nil
}
