package api

import (
	"context"

	http "github.com/bogdanfinn/fhttp"
	"github.com/tidwall/gjson"

	apierrors "github.com/diogo/geminichat/internal/errors"
	"github.com/diogo/geminichat/internal/models"
)

// FetchModels retrieves the catalog from GET /models. The response is an
// object keyed by model ID; entries are returned in document order, which
// decoding into a Go map would lose. Every failure is a CatalogError.
func (c *Client) FetchModels(ctx context.Context) ([]models.ModelInfo, error) {
	data, err := c.do(ctx, http.MethodGet, models.EndpointModels, nil)
	if err != nil {
		return nil, apierrors.NewCatalogError(err)
	}

	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, apierrors.NewCatalogError(apierrors.NewParseError("catalog is not an object", "$"))
	}

	var entries []models.ModelInfo
	root.ForEach(func(key, value gjson.Result) bool {
		entries = append(entries, models.ModelInfo{
			ID:          key.String(),
			Name:        value.Get("name").String(),
			Description: value.Get("description").String(),
			Speed:       value.Get("speed").String(),
			Category:    value.Get("category").String(),
		})
		return true
	})
	return entries, nil
}
