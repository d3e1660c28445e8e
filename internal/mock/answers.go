package mock

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"graphchat/internal/client"
	"graphchat/internal/viz"
)

var vizKeywords = []string{"show", "chart", "graph", "distribution", "analyze"}

var scatterFigure = json.RawMessage(`{
  "data": [
    {
      "x": [1, 2, 3, 4, 5, 6, 7, 8, 9, 10],
      "y": [2, 6, 3, 8, 4, 9, 5, 7, 6, 8],
      "mode": "markers",
      "type": "scatter",
      "name": "Data Points",
      "marker": {"color": "hsl(200, 95%, 40%)", "size": 8}
    }
  ],
  "layout": {
    "title": "Node Distribution Analysis",
    "xaxis": {"title": "Time Period"},
    "yaxis": {"title": "Node Count"}
  }
}`)

var barFigure = json.RawMessage(`{
  "data": [
    {
      "x": ["Nodes", "Relationships", "Properties", "Labels"],
      "y": [150, 89, 45, 12],
      "type": "bar",
      "marker": {"color": ["hsl(200, 95%, 40%)", "hsl(200, 100%, 60%)", "hsl(220, 15%, 96%)", "hsl(200, 100%, 95%)"]}
    }
  ],
  "layout": {
    "title": "Database Statistics",
    "xaxis": {"title": "Entity Type"},
    "yaxis": {"title": "Count"}
  }
}`)

// WantsVisualization reports whether a question asks for a chart.
func WantsVisualization(question string) bool {
	q := strings.ToLower(question)
	for _, kw := range vizKeywords {
		if strings.Contains(q, kw) {
			return true
		}
	}
	return false
}

// Answer builds the canned reply for question.
func Answer(question string, now time.Time) client.QueryResponse {
	if !WantsVisualization(question) {
		return client.QueryResponse{
			Success: true,
			Message: fmt.Sprintf("I understand you're asking about %q. Based on your Neo4j database, "+
				"I can provide insights and create visualizations to help answer your question. "+
				"Would you like me to create a specific chart or analysis for this?", question),
		}
	}

	q := strings.ToLower(question)
	scatter := strings.Contains(q, "distribution") || strings.Contains(q, "scatter")

	p := &viz.Payload{
		Figure:      barFigure,
		Type:        "Bar Chart",
		GeneratedAt: now.UTC().Format(time.RFC3339),
		ConfigUsed: map[string]any{
			"chart_type":        "bar",
			"color_scheme":      "primary",
			"show_legend":       true,
			"animation_enabled": true,
			"data_points":       4,
		},
	}
	focus := "statistical overview"
	if scatter {
		p.Figure = scatterFigure
		p.Type = "Scatter Plot"
		p.ConfigUsed["chart_type"] = "scatter"
		p.ConfigUsed["data_points"] = 10
		focus = "distribution patterns"
	}

	return client.QueryResponse{
		Success: true,
		Message: fmt.Sprintf("I've analyzed your data and created a visualization showing the %s. "+
			"The chart reveals interesting patterns in your dataset that can help guide further analysis.", focus),
		Visualization: p,
	}
}
