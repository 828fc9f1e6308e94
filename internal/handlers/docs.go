package handlers

import (
	"encoding/json"
	"net/http"
)

func queryParam(name, description string) map[string]interface{} {
	return map[string]interface{}{
		"name":        name,
		"in":          "query",
		"description": description,
		"required":    true,
		"schema":      map[string]string{"type": "string"},
	}
}

var archiveParam = map[string]interface{}{
	"name":        "archive",
	"in":          "path",
	"description": "Archive to search: nexrad or goes",
	"required":    true,
	"schema":      map[string]interface{}{"type": "string", "enum": []string{"nexrad", "goes"}},
}

var listResponse = map[string]interface{}{
	"200": map[string]interface{}{
		"description": "Successful response",
		"content": map[string]interface{}{
			"application/json": map[string]interface{}{
				"schema": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"data":  map[string]interface{}{"type": "array", "items": map[string]string{"type": "string"}},
						"total": map[string]string{"type": "integer"},
					},
				},
			},
		},
	},
	"400": map[string]string{"description": "Malformed or missing filter"},
	"503": map[string]string{"description": "Metadata index not populated"},
}

func listPath(summary string, params ...map[string]interface{}) map[string]interface{} {
	op := map[string]interface{}{
		"summary":   summary,
		"responses": listResponse,
	}
	if len(params) > 0 {
		op["parameters"] = params
	}
	return map[string]interface{}{"get": op}
}

var resolveSchema = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"archive":  map[string]string{"type": "string"},
		"filename": map[string]string{"type": "string"},
		"outcome":  map[string]interface{}{"type": "string", "enum": []string{"resolved", "not_found", "invalid_format"}},
		"url":      map[string]string{"type": "string"},
	},
}

// OpenAPISpec returns the OpenAPI 3.0 specification for the archive browser API
func OpenAPISpec(w http.ResponseWriter, r *http.Request) {
	spec := map[string]interface{}{
		"openapi": "3.0.0",
		"info": map[string]interface{}{
			"title":       "NOAA Archive API",
			"description": "Resolve, browse and copy files from the public NEXRAD Level-2 and GOES-18 archives",
			"version":     "1.0.0",
		},
		"servers": []map[string]string{
			{"url": "http://localhost:8080", "description": "Local development server"},
		},
		"paths": map[string]interface{}{
			"/api/{archive}/resolve": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "Resolve a filename to its public URL",
					"description": "Validates the filename, derives its object key and checks that the object exists",
					"parameters": []map[string]interface{}{
						archiveParam,
						queryParam("filename", "Archive filename, e.g. KTLX20230615_123456_V06"),
					},
					"responses": map[string]interface{}{
						"200": map[string]interface{}{
							"description": "File exists",
							"content": map[string]interface{}{
								"application/json": map[string]interface{}{"schema": resolveSchema},
							},
						},
						"404": map[string]string{"description": "Well-formed name, no such object"},
						"422": map[string]string{"description": "Name does not match the archive's filename format"},
						"502": map[string]string{"description": "Archive could not be reached"},
					},
				},
				"post": map[string]interface{}{
					"summary":    "Resolve a batch of filenames",
					"parameters": []map[string]interface{}{archiveParam},
					"requestBody": map[string]interface{}{
						"required": true,
						"content": map[string]interface{}{
							"application/json": map[string]interface{}{
								"schema": map[string]interface{}{
									"type": "object",
									"properties": map[string]interface{}{
										"filenames": map[string]interface{}{"type": "array", "items": map[string]string{"type": "string"}},
									},
								},
							},
						},
					},
					"responses": map[string]interface{}{
						"200": map[string]interface{}{
							"description": "Outcomes in request order",
							"content": map[string]interface{}{
								"application/json": map[string]interface{}{
									"schema": map[string]interface{}{
										"type": "object",
										"properties": map[string]interface{}{
											"archive": map[string]string{"type": "string"},
											"results": map[string]interface{}{"type": "array", "items": resolveSchema},
										},
									},
								},
							},
						},
						"502": map[string]string{"description": "Archive could not be reached"},
					},
				},
			},
			"/api/{archive}/copy": map[string]interface{}{
				"post": map[string]interface{}{
					"summary":    "Copy a file into the user bucket",
					"parameters": []map[string]interface{}{archiveParam},
					"requestBody": map[string]interface{}{
						"required": true,
						"content": map[string]interface{}{
							"application/json": map[string]interface{}{
								"schema": map[string]interface{}{
									"type":       "object",
									"properties": map[string]interface{}{"filename": map[string]string{"type": "string"}},
								},
							},
						},
					},
					"responses": map[string]interface{}{
						"200": map[string]interface{}{
							"description": "Copied; download_url is a presigned link",
							"content": map[string]interface{}{
								"application/json": map[string]interface{}{
									"schema": map[string]interface{}{
										"type": "object",
										"properties": map[string]interface{}{
											"archive":      map[string]string{"type": "string"},
											"filename":     map[string]string{"type": "string"},
											"source_key":   map[string]string{"type": "string"},
											"download_url": map[string]string{"type": "string"},
										},
									},
								},
							},
						},
						"422": map[string]string{"description": "Invalid filename"},
						"503": map[string]string{"description": "User bucket not configured"},
					},
				},
			},
			"/api/goes/products": listPath("List indexed GOES-18 products"),
			"/api/goes/years":    listPath("List years for a product", queryParam("product", "Product, e.g. ABI-L1b-RadC")),
			"/api/goes/days": listPath("List days of year",
				queryParam("product", "Product"), queryParam("year", "Year (YYYY)")),
			"/api/goes/hours": listPath("List hours",
				queryParam("product", "Product"), queryParam("year", "Year (YYYY)"), queryParam("day", "Day of year (DDD)")),
			"/api/goes/files": listPath("List files for one product hour",
				queryParam("product", "Product"), queryParam("year", "Year (YYYY)"), queryParam("day", "Day of year (DDD)"), queryParam("hour", "Hour (HH)")),
			"/api/nexrad/years":  listPath("List indexed NEXRAD years"),
			"/api/nexrad/months": listPath("List months", queryParam("year", "Year (YYYY)")),
			"/api/nexrad/days": listPath("List days",
				queryParam("year", "Year (YYYY)"), queryParam("month", "Month (MM)")),
			"/api/nexrad/stations": listPath("List ground stations",
				queryParam("year", "Year (YYYY)"), queryParam("month", "Month (MM)"), queryParam("day", "Day (DD)")),
			"/api/nexrad/files": listPath("List files for one station day",
				queryParam("year", "Year (YYYY)"), queryParam("month", "Month (MM)"), queryParam("day", "Day (DD)"), queryParam("station", "Station, e.g. KTLX")),
			"/api/nexrad/sites": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "List NEXRAD radar sites",
					"description": "Site locations for map display",
					"responses": map[string]interface{}{
						"200": map[string]interface{}{
							"description": "Successful response",
							"content": map[string]interface{}{
								"application/json": map[string]interface{}{
									"schema": map[string]interface{}{
										"type": "object",
										"properties": map[string]interface{}{
											"data": map[string]interface{}{
												"type": "array",
												"items": map[string]interface{}{
													"type": "object",
													"properties": map[string]interface{}{
														"ground_station": map[string]string{"type": "string"},
														"state":          map[string]string{"type": "string"},
														"county":         map[string]string{"type": "string"},
														"latitude":       map[string]string{"type": "number"},
														"longitude":      map[string]string{"type": "number"},
														"elevation":      map[string]string{"type": "integer"},
													},
												},
											},
											"total": map[string]string{"type": "integer"},
										},
									},
								},
							},
						},
						"503": map[string]string{"description": "Site list not scraped yet"},
					},
				},
			},
			"/health": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "Health check",
					"description": "Check that the API and its catalog database are reachable",
					"responses": map[string]interface{}{
						"200": map[string]string{"description": "API is healthy"},
						"503": map[string]string{"description": "Catalog database unreachable"},
					},
				},
			},
			"/metrics": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "Prometheus metrics",
					"description": "Prometheus metrics endpoint for monitoring",
					"responses": map[string]interface{}{
						"200": map[string]interface{}{
							"description": "Prometheus metrics in text format",
							"content": map[string]interface{}{
								"text/plain": map[string]interface{}{
									"schema": map[string]string{"type": "string"},
								},
							},
						},
					},
				},
			},
		},
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(spec)
}
