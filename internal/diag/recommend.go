package diag

import "fmt"

// Recommendations derives remediation suggestions from a finished report.
// The rule set is fixed; an empty slice means everything needed is in place.
func Recommendations(report *Report) []string {
	var recs []string

	if report.StatusOf(engineCheckName("raganything")) == StatusFail {
		recs = append(recs,
			"Start the Qdrant vector store backing the raganything engine:\n"+
				"    docker run -p 6333:6333 -p 6334:6334 qdrant/qdrant")
	}
	if report.StatusOf(engineCheckName("lightrag")) == StatusFail {
		recs = append(recs,
			"Start the Neo4j graph store backing the lightrag engine:\n"+
				"    docker run -p 7474:7474 -p 7687:7687 neo4j")
	}
	if report.StatusOf(CheckEmbedding) == StatusFail {
		recs = append(recs,
			"Configure the embedding service:\n"+
				"    set OPENAI_API_KEY and OPENAI_BASE_URL in DeepTutor.env or .env")
	}
	if report.StatusOf(CheckLLM) == StatusFail {
		recs = append(recs,
			"Configure the LLM service:\n"+
				"    set OPENAI_API_KEY (or ANTHROPIC_API_KEY) in DeepTutor.env or .env")
	}

	return recs
}

func (r *Runner) printRecommendations(report *Report) {
	r.pr.Header("Recommendations")

	if report.Pipelines["llamaindex"] == "available" {
		r.pr.Success("llamaindex pipeline works without the optional engines (lightweight vector search)")
	}

	recs := Recommendations(report)
	if len(recs) == 0 {
		r.pr.Success("all services operational")
		return
	}
	for i, rec := range recs {
		fmt.Fprintf(r.pr.w, "\n  %d. %s\n", i+1, rec)
	}
}
