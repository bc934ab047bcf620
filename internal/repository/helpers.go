package repository

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/parisxmas/OxiDB/OxiAnketa/internal/models"
)

// normalizeID converts the _id field from numeric (float64) to string
// since OxiDB returns auto-increment numeric IDs.
func normalizeID(doc map[string]any) {
	if id, ok := doc["_id"]; ok {
		switch v := id.(type) {
		case float64:
			doc["_id"] = strconv.FormatFloat(v, 'f', 0, 64)
		case int:
			doc["_id"] = strconv.Itoa(v)
		case int64:
			doc["_id"] = strconv.FormatInt(v, 10)
		}
	}
}

// extractID gets the inserted document ID from an OxiDB insert response.
func extractID(result map[string]any) string {
	if id, ok := result["id"]; ok {
		switch v := id.(type) {
		case string:
			return v
		case float64:
			return strconv.FormatFloat(v, 'f', 0, 64)
		}
	}
	return ""
}

// toNumericID turns a decimal id back into the numeric form OxiDB stores.
// Anything else is passed through and simply will not match.
func toNumericID(id string) any {
	if n, err := strconv.ParseInt(id, 10, 64); err == nil {
		return n
	}
	return id
}

func applicationToDoc(a *models.Application) (map[string]any, error) {
	data, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("marshal application: %w", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal application doc: %w", err)
	}
	delete(doc, "_id")
	return doc, nil
}

func docToApplication(doc map[string]any) (*models.Application, error) {
	normalizeID(doc)
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal application doc: %w", err)
	}
	var a models.Application
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("unmarshal application: %w", err)
	}
	if a.Skills == nil {
		a.Skills = []string{}
	}
	return &a, nil
}

func docsToApplications(docs []map[string]any) ([]models.Application, error) {
	apps := make([]models.Application, 0, len(docs))
	for _, d := range docs {
		a, err := docToApplication(d)
		if err != nil {
			return nil, err
		}
		apps = append(apps, *a)
	}
	return apps, nil
}
