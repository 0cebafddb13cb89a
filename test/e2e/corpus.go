// Package e2e provides end-to-end tests with a large knowledge base and
// multiple queries.
package e2e

import (
	"fmt"
	"strings"

	"github.com/hyperjump/kotae/internal/models"
)

// courseGroups are the knowledge-base groups the corpus documents are spread
// over, round-robin by document position.
var courseGroups = []string{"de-zoomcamp", "ml-zoomcamp", "mlops-zoomcamp", "llm-zoomcamp"}

// QueryTestCase defines a query and the question(s) whose entries must appear
// in the search results. At least one of ExpectedQuestions must be present.
type QueryTestCase struct {
	Query             string
	ExpectedQuestions []string
	Description       string
}

// Corpus holds knowledge-base groups and query test cases for E2E tests.
type Corpus struct {
	Groups       []models.Group
	TestCases    []QueryTestCase
	TotalDocs    int
	TotalQueries int
}

// BuildCorpus returns a knowledge base of 100 FAQ entries with varied content
// and multiple query test cases. Each entry has a unique "signature" phrase in
// its answer so queries can assert the correct entry is returned.
func BuildCorpus() *Corpus {
	docs := buildDocuments(100)
	cases := buildQueryTestCases(docs)
	groups := groupDocuments(docs)
	return &Corpus{
		Groups:       groups,
		TestCases:    cases,
		TotalDocs:    len(docs),
		TotalQueries: len(cases),
	}
}

func buildDocuments(n int) []models.Document {
	topics := []struct {
		section  string
		question string
		answer   string
	}{
		{"General course-related questions", "When does the course start?", "The course starts on January 15th at 17:00. The course start announcement goes out in the channel."},
		{"General course-related questions", "Can I still join after the start date?", "Yes, you can still join after the start date. Late registration is accepted until the first project deadline."},
		{"General course-related questions", "Do I need to register to submit homework?", "Registration is not a gate for homework. Homework submission only needs the form link posted each week."},
		{"General course-related questions", "Where do I find the course videos?", "All course videos are on the public playlist. The course playlist is linked from the repository readme."},
		{"General course-related questions", "Is there a certificate at the end?", "A certificate is issued to everyone who finishes both projects. Certificate eligibility requires peer reviews too."},
		{"Environment setup", "How do I install Docker on Windows?", "Install Docker Desktop and enable the WSL2 backend. Docker Desktop on Windows needs virtualization enabled in BIOS."},
		{"Environment setup", "Why does docker compose fail to start?", "Check that the compose file version matches your engine. A docker compose failure usually means a port is already taken."},
		{"Environment setup", "How do I connect to Postgres from pgcli?", "Use pgcli with the host, port, and database from the compose file. The pgcli connection string needs the mapped port, not 5432."},
		{"Environment setup", "What Python version should I use?", "Use Python 3.10 or newer. The Python version matters for the pinned dependencies in the requirements file."},
		{"Environment setup", "How do I create a virtual environment?", "Create a virtual environment with venv or conda. The virtual environment keeps course dependencies away from system packages."},
		{"Environment setup", "Why is psycopg2 failing to install?", "Install the binary wheel instead of building from source. The psycopg2 build failure means libpq headers are missing."},
		{"Docker and Terraform", "How do I persist Postgres data in Docker?", "Mount a named volume at the data directory. Postgres data persistence needs the volume to survive container recreation."},
		{"Docker and Terraform", "What is the difference between image and container?", "An image is the packaged filesystem, a container is a running instance of it. One image can back many containers."},
		{"Docker and Terraform", "How do I pass environment variables to a container?", "Use the -e flag or an env file. Container environment variables override what is baked into the image."},
		{"Docker and Terraform", "Why does Terraform say the state is locked?", "Another run holds the lock or a previous run crashed. A stale Terraform state lock can be released with force-unlock."},
		{"Docker and Terraform", "How do I destroy Terraform resources?", "Run terraform destroy and confirm the plan. Terraform destroy removes everything in the state, so check the workspace first."},
		{"Data ingestion", "How do I load a parquet file into pandas?", "Use read_parquet with the pyarrow engine. Loading parquet into pandas preserves column types better than CSV."},
		{"Data ingestion", "What is the taxi dataset schema?", "The taxi dataset has pickup and dropoff timestamps, locations, and fare fields. The schema is documented in the data dictionary."},
		{"Data ingestion", "How do I handle timestamps across time zones?", "Store timestamps in UTC and convert at the edges. Time zone handling bugs usually come from naive datetime objects."},
		{"Data ingestion", "Why is my CSV import so slow?", "Use chunked reads and explicit dtypes. A slow CSV import is often pandas inferring types over the whole file."},
		{"Workflow orchestration", "What is a DAG in this context?", "A DAG is the dependency graph of tasks. The DAG defines order: downstream tasks wait for their upstream tasks."},
		{"Workflow orchestration", "How do I backfill a pipeline?", "Run the flow for past dates with the backfill command. A backfill reuses the same tasks with historical run dates."},
		{"Workflow orchestration", "Why did my scheduled run not trigger?", "Check that the deployment schedule is active and the worker is online. A missed scheduled run usually means the agent was down."},
		{"Workflow orchestration", "How do I retry a failed task?", "Configure retries with a delay on the task decorator. Task retries apply per task, not per flow."},
		{"Data warehouse", "What is partitioning in BigQuery?", "Partitioning splits a table by a column, usually date. BigQuery partitioning cuts cost because queries scan fewer bytes."},
		{"Data warehouse", "When should I use clustering over partitioning?", "Cluster when filters hit high-cardinality columns. BigQuery clustering orders data inside partitions for pruning."},
		{"Data warehouse", "How much does a query cost?", "Cost follows bytes scanned by the query. The query cost estimate shows in the console before you run it."},
		{"Data warehouse", "What is an external table?", "An external table reads data that stays in the bucket. External tables trade query speed for zero load steps."},
		{"Analytics engineering", "What does dbt run actually do?", "dbt run compiles the models to SQL and executes them in dependency order. Each dbt model becomes a table or view."},
		{"Analytics engineering", "How do I test dbt models?", "Add schema tests in YAML and custom data tests as SQL. dbt test checks uniqueness, nulls, and accepted values."},
		{"Analytics engineering", "What is incremental materialization?", "Incremental models only process new rows after the first run. Incremental materialization needs a unique key to merge on."},
		{"Analytics engineering", "Where do dbt docs come from?", "dbt docs generate builds a site from the manifest and catalog. Model descriptions in YAML become the documentation."},
		{"Batch processing", "How do I create a Spark session?", "Build a SparkSession with the builder pattern. The Spark session is the entry point for dataframes and SQL."},
		{"Batch processing", "Why are there so many small output files?", "Each partition writes its own file. Repartition or coalesce before writing to control the output file count."},
		{"Batch processing", "What is a narrow versus wide transformation?", "Narrow transformations stay within a partition, wide ones shuffle. A shuffle is the expensive part of a Spark job."},
		{"Batch processing", "How do I read from GCS in Spark?", "Add the GCS connector jar and set the credentials. Reading from GCS in Spark uses the gs scheme in paths."},
		{"Streaming", "How do I run Kafka with Java?", "In the project directory, run the provided java command with the jar path. Running Kafka with Java needs the cluster URL in the config."},
		{"Streaming", "Why is my Kafka consumer lagging?", "Consumer lag grows when processing is slower than production. Scale partitions and consumers together to reduce Kafka consumer lag."},
		{"Streaming", "What is a consumer group?", "A consumer group shares partitions among members. Each partition is read by exactly one consumer in the group."},
		{"Streaming", "How do I reset offsets?", "Use the consumer group tool to reset offsets to earliest or a timestamp. Offset resets require the group to be inactive."},
		{"Machine learning", "What is regularization for?", "Regularization penalizes large weights to reduce overfitting. L1 regularization also drives some weights to zero."},
		{"Machine learning", "How do I pick a validation split?", "Keep the validation split time-ordered for time series. A random validation split leaks future information into training."},
		{"Machine learning", "What does ROC AUC measure?", "ROC AUC measures ranking quality across thresholds. An AUC of 0.5 is random, 1.0 is perfect separation."},
		{"Machine learning", "Why does my model predict one class?", "Class imbalance pushes the model to the majority class. Reweight classes or resample to fix one-class predictions."},
		{"Deployment", "How do I serve a model with Flask?", "Wrap predict in a Flask route and run it behind gunicorn. Serving a model with Flask needs the model loaded once at startup."},
		{"Deployment", "What goes into the model registry?", "The registry stores versioned model artifacts and their metrics. Promote a model from staging to production in the registry."},
		{"Deployment", "How do I monitor a deployed model?", "Track input drift and prediction quality over time. Model monitoring alerts fire when metrics leave their reference ranges."},
		{"Deployment", "Why is my lambda function timing out?", "Cold starts plus a large model blow the timeout. Increase memory, trim the model, or keep the lambda function warm."},
		{"LLM basics", "What is retrieval augmented generation?", "Retrieval augmented generation grounds the model in retrieved documents. RAG answers cite the knowledge base instead of guessing."},
		{"LLM basics", "How big should text chunks be?", "Chunk size balances recall and context budget. Overlapping text chunks avoid cutting answers in half."},
	}

	out := make([]models.Document, 0, n)
	for i := 0; i < n && i < len(topics); i++ {
		t := topics[i]
		out = append(out, models.Document{
			Section:  t.section,
			Question: t.question,
			Text:     t.answer,
		})
	}
	// If we need more than len(topics), duplicate with numbered questions.
	for len(out) < n {
		i := len(out)
		t := topics[i%len(topics)]
		out = append(out, models.Document{
			Section:  t.section,
			Question: fmt.Sprintf("%s (%d)", t.question, i+1),
			Text:     t.answer,
		})
	}
	return out
}

// groupDocuments spreads docs over the course groups round-robin, preserving
// document order inside each group.
func groupDocuments(docs []models.Document) []models.Group {
	groups := make([]models.Group, len(courseGroups))
	for i, id := range courseGroups {
		groups[i].ID = id
	}
	for i, d := range docs {
		g := i % len(groups)
		groups[g].Documents = append(groups[g].Documents, d)
	}
	return groups
}

func buildQueryTestCases(docs []models.Document) []QueryTestCase {
	if len(docs) == 0 {
		return nil
	}
	// Each query targets a signature phrase from one answer. Duplicated
	// padding entries share the answer, so every entry containing the phrase
	// counts as expected.
	phrases := []string{
		"course starts on January 15th", "Late registration", "Homework submission",
		"course playlist", "Certificate eligibility", "WSL2 backend",
		"docker compose failure", "pgcli connection string", "pinned dependencies",
		"virtual environment", "libpq headers", "Postgres data persistence",
		"running instance", "Container environment variables", "Terraform state lock",
		"terraform destroy", "pyarrow engine", "data dictionary",
		"naive datetime", "slow CSV import", "dependency graph of tasks",
		"backfill reuses", "missed scheduled run", "task decorator",
		"BigQuery partitioning", "BigQuery clustering", "bytes scanned",
		"external table", "dbt model", "accepted values",
		"incremental materialization", "manifest and catalog", "SparkSession",
		"output file count", "shuffle", "GCS connector",
		"Running Kafka with Java", "Kafka consumer lag", "consumer group",
		"reset offsets", "L1 regularization", "validation split",
		"ROC AUC", "Class imbalance", "gunicorn",
		"model registry", "reference ranges", "lambda function",
		"retrieval augmented generation", "text chunks",
	}
	var cases []QueryTestCase
	for _, p := range phrases {
		var expected []string
		for _, d := range docs {
			if containsPhrase(d, p) {
				expected = append(expected, d.Question)
			}
		}
		if len(expected) == 0 {
			continue
		}
		cases = append(cases, QueryTestCase{
			Query:             p,
			ExpectedQuestions: expected,
			Description:       fmt.Sprintf("query %q should return %q", p, expected[0]),
		})
	}
	return cases
}

func containsPhrase(d models.Document, phrase string) bool {
	return strings.Contains(d.Question, phrase) || strings.Contains(d.Text, phrase)
}
