package mcp

import (
	"context"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/clinigraph/clinigraph/internal/core/ports/driving"
	"github.com/clinigraph/clinigraph/internal/render"
)

const (
	// uriScheme is the custom URI scheme for clinigraph resources.
	uriScheme = "ehr://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	// Static resource for the schema summary.
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "schema",
		Name:        "schema",
		Description: "Compact text summary of the EHR graph schema",
		MIMEType:    "text/plain",
	}, s.handleSchemaResource)

	// Template for patient summaries.
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "patients/{subjectId}",
		Name:        "patient",
		Description: "Full patient record with admissions, diagnoses, procedures, medications, and lab events",
		MIMEType:    "application/json",
	}, s.handlePatientResource)
}

// handleSchemaResource returns the rendered schema summary.
func (s *Server) handleSchemaResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Schema == nil {
		return nil, ErrSchemaUnavailable
	}

	summary, err := s.ports.Schema.Summary(ctx)
	if err != nil {
		return nil, err
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "text/plain",
			Text:     summary.Render(),
		}},
	}, nil
}

// handlePatientResource returns a full patient record as JSON.
func (s *Server) handlePatientResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	// Extract subjectId from URI: ehr://patients/{subjectId}
	subjectID := extractSubjectID(req.Params.URI)
	if subjectID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	record, err := s.ports.Record.GetPatient(ctx, subjectID, driving.PatientOptions{
		IncludeAdmissions:  true,
		IncludeDiagnoses:   true,
		IncludeProcedures:  true,
		IncludeMedications: true,
		IncludeLabEvents:   true,
	})
	if err != nil {
		return nil, err
	}

	data, err := render.Structured(record)
	if err != nil {
		return nil, err
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     data,
		}},
	}, nil
}

// extractSubjectID extracts the subject ID from a URI like ehr://patients/{subjectId}.
func extractSubjectID(uri string) string {
	const prefix = uriScheme + "patients/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	id := strings.TrimPrefix(uri, prefix)
	if strings.Contains(id, "/") {
		return ""
	}
	return id
}
