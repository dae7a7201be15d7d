package consultations

import "github.com/JaimeStill/medora/pkg/openapi"

type specs struct {
	List    *openapi.Operation
	Process *openapi.Operation
	Submit  *openapi.Operation
	Search  *openapi.Operation
	Find    *openapi.Operation
	Letter  *openapi.Operation
	Delete  *openapi.Operation
}

var idParam = openapi.PathParam("id", "Consultation ID (the run's request_id)")

var spec = specs{
	List: &openapi.Operation{
		Summary:     "List consultations",
		Description: "Returns a paginated list of indexed consultations.",
		Parameters: []*openapi.Parameter{
			openapi.QueryParam("page", "integer", "Page number (1-indexed)", false),
			openapi.QueryParam("page_size", "integer", "Results per page", false),
			openapi.QueryParam("search", "string", "Matches condition, correlation id, or user id", false),
			openapi.QueryParam("sort", "string", "Comma-separated sort fields. Prefix with - for descending", false),
			openapi.QueryParam("correlation_id", "string", "Filter by correlation id", false),
			openapi.QueryParam("user_id", "string", "Filter by user id", false),
			openapi.QueryParam("condition", "string", "Filter by selected condition", false),
			openapi.QueryParam("min_probability", "number", "Minimum selected probability", false),
			openapi.QueryParam("created_after", "string", "RFC 3339 lower bound (inclusive)", false),
			openapi.QueryParam("created_before", "string", "RFC 3339 upper bound (exclusive)", false),
		},
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Consultation page", "ConsultationPage"),
		},
	},
	Process: &openapi.Operation{
		Summary:     "Generate a consultation letter",
		Description: "Runs the pipeline synchronously and returns once the letter is persisted.",
		RequestBody: openapi.RequestBodyJSON("AnalysisRequest", true),
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Letter generated and persisted", "AnalysisResult"),
			400: openapi.ResponseRef("BadRequest"),
			404: openapi.ResponseRef("NotFound"),
			502: openapi.ResponseRef("BadGateway"),
			500: openapi.ResponseRef("InternalError"),
		},
	},
	Submit: &openapi.Operation{
		Summary:     "Queue a consultation letter",
		Description: "Validates the request, queues the run, and returns immediately. Failures are logged only.",
		RequestBody: openapi.RequestBodyJSON("AnalysisRequest", true),
		Responses: map[int]*openapi.Response{
			202: openapi.ResponseJSON("Run accepted", "Ack"),
			400: openapi.ResponseRef("BadRequest"),
			503: openapi.ResponseRef("ServiceUnavailable"),
		},
	},
	Search: &openapi.Operation{
		Summary:     "Search consultations",
		RequestBody: openapi.RequestBodyJSON("ConsultationSearch", true),
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Consultation page", "ConsultationPage"),
			400: openapi.ResponseRef("BadRequest"),
		},
	},
	Find: &openapi.Operation{
		Summary:    "Find a consultation",
		Parameters: []*openapi.Parameter{idParam},
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Consultation", "Consultation"),
			400: openapi.ResponseRef("BadRequest"),
			404: openapi.ResponseRef("NotFound"),
		},
	},
	Letter: &openapi.Operation{
		Summary:     "Read a persisted letter",
		Description: "Returns the stored record. Pass format=html to receive only the rendered letter.",
		Parameters: []*openapi.Parameter{
			idParam,
			openapi.QueryParam("format", "string", "json (default) or html", false),
		},
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Persisted record", "Record"),
			404: openapi.ResponseRef("NotFound"),
		},
	},
	Delete: &openapi.Operation{
		Summary:    "Delete a consultation",
		Parameters: []*openapi.Parameter{idParam},
		Responses: map[int]*openapi.Response{
			204: {Description: "Deleted"},
			404: openapi.ResponseRef("NotFound"),
		},
	},
}

var patientDetails = &openapi.Schema{
	Type: "object",
	Properties: map[string]*openapi.Schema{
		"blood_type": {Type: "string", Example: "A+"},
		"age":        {Type: "integer", Example: 45},
		"gender":     {Type: "string", Example: "female"},
		"bio":        {Type: "string", Description: "Free-text medical history"},
	},
}

var schemas = map[string]*openapi.Schema{
	"PatientDetails": patientDetails,
	"AnalysisRequest": {
		Type:     "object",
		Required: []string{"cnn_response_url"},
		Properties: map[string]*openapi.Schema{
			"user_details":     openapi.SchemaRef("PatientDetails"),
			"cnn_response_url": {Type: "string", Description: "Storage reference to the classification result", Example: "s3://medora/user_data/42/scan.json"},
			"chat_id":          {Type: "string", Description: "Caller correlation id. Defaults to the request id."},
		},
	},
	"AnalysisResult": {
		Type: "object",
		Properties: map[string]*openapi.Schema{
			"status":         {Type: "string", Example: "completed"},
			"message":        {Type: "string"},
			"request_id":     {Type: "string", Format: "uuid"},
			"correlation_id": {Type: "string"},
			"response_url":   {Type: "string", Description: "Storage reference to the persisted record"},
			"top_condition":  {Type: "string"},
			"probability":    {Type: "number", Minimum: openapi.Bound(0), Maximum: openapi.Bound(1)},
		},
	},
	"Ack": {
		Type: "object",
		Properties: map[string]*openapi.Schema{
			"status":         {Type: "string", Example: "accepted"},
			"message":        {Type: "string"},
			"request_id":     {Type: "string", Format: "uuid"},
			"correlation_id": {Type: "string"},
		},
	},
	"Consultation": {
		Type: "object",
		Properties: map[string]*openapi.Schema{
			"id":             {Type: "string", Format: "uuid"},
			"correlation_id": {Type: "string"},
			"user_id":        {Type: "string"},
			"condition":      {Type: "string"},
			"probability":    {Type: "number"},
			"source_ref":     {Type: "string"},
			"response_ref":   {Type: "string"},
			"model_name":     {Type: "string"},
			"created_at":     {Type: "string", Format: "date-time"},
		},
	},
	"ConsultationPage": {
		Type: "object",
		Properties: map[string]*openapi.Schema{
			"data":        {Type: "array", Items: openapi.SchemaRef("Consultation")},
			"total":       {Type: "integer"},
			"page":        {Type: "integer"},
			"page_size":   {Type: "integer"},
			"total_pages": {Type: "integer"},
		},
	},
	"ConsultationSearch": {
		Type: "object",
		Properties: map[string]*openapi.Schema{
			"page":            {Type: "integer"},
			"page_size":       {Type: "integer"},
			"search":          {Type: "string"},
			"sort":            {Type: "string"},
			"correlation_id":  {Type: "string"},
			"user_id":         {Type: "string"},
			"condition":       {Type: "string"},
			"min_probability": {Type: "number"},
			"created_after":   {Type: "string", Format: "date-time"},
			"created_before":  {Type: "string", Format: "date-time"},
		},
	},
	"Record": {
		Type: "object",
		Properties: map[string]*openapi.Schema{
			"timestamp":    {Type: "string", Format: "date-time"},
			"user_details": openapi.SchemaRef("PatientDetails"),
			"llm_response": {Type: "string", Description: "Rendered letter markup"},
			"chat_id":      {Type: "string"},
			"approved":     {Type: "boolean"},
		},
	},
}
