package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"

	"github.com/ledgerkit-io/qbo-client/internal/constants"
	qbohttp "github.com/ledgerkit-io/qbo-client/internal/http"
	"github.com/ledgerkit-io/qbo-client/pkg/qbo"
)

// Static errors for err113 compliance.
var errEmptyUploadResponse = errors.New("upload response carried no attachable")

// attachmentsClient implements qbo.AttachmentsClient. CRUD goes through the
// generic entity client; Upload uses the dedicated multipart endpoint.
type attachmentsClient struct {
	*entityClient[qbo.Attachable, *qbo.Attachable]
}

func newAttachmentsClient(c *Context) *attachmentsClient {
	return &attachmentsClient{
		entityClient: newEntityClient[qbo.Attachable, *qbo.Attachable](c),
	}
}

// Upload sends file content with its Attachable metadata as one multipart
// request. The metadata part is JSON; the content part carries the file under
// the attachable's declared content type. The multipart writer owns the
// Content-Type header because it carries the boundary.
func (a *attachmentsClient) Upload(ctx context.Context, attachable *qbo.Attachable, content []byte) (*qbo.Attachable, error) {
	var buf bytes.Buffer

	writer := multipart.NewWriter(&buf)

	metadata, err := json.Marshal(attachable)
	if err != nil {
		return nil, qbo.NewDecodeError(fmt.Errorf("encoding attachable metadata: %w", err))
	}

	metaHeader := make(textproto.MIMEHeader)
	metaHeader.Set("Content-Disposition", `form-data; name="file_metadata_01"`)
	metaHeader.Set("Content-Type", constants.ContentTypeJSON)

	metaPart, err := writer.CreatePart(metaHeader)
	if err != nil {
		return nil, fmt.Errorf("creating metadata part: %w", err)
	}

	_, _ = metaPart.Write(metadata)

	contentHeader := make(textproto.MIMEHeader)
	contentHeader.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="file_content_01"; filename=%q`, attachable.FileName))

	if attachable.ContentType != "" {
		contentHeader.Set("Content-Type", attachable.ContentType)
	}

	contentPart, err := writer.CreatePart(contentHeader)
	if err != nil {
		return nil, fmt.Errorf("creating content part: %w", err)
	}

	_, _ = contentPart.Write(content)

	err = writer.Close()
	if err != nil {
		return nil, fmt.Errorf("finalizing multipart body: %w", err)
	}

	req := &qbohttp.Request{
		Method:      http.MethodPost,
		Path:        a.context.path("upload"),
		RawBody:     buf.Bytes(),
		ContentType: writer.FormDataContentType(),
	}

	return Execute(ctx, a.context, req, decodeUploadResponse)
}

// decodeUploadResponse unwraps {"AttachableResponse":[{"Attachable":{...}}]}.
func decodeUploadResponse(body []byte) (*qbo.Attachable, error) {
	var envelope struct {
		AttachableResponse []struct {
			Attachable *qbo.Attachable `json:"Attachable"`
			Fault      *qbo.Fault      `json:"Fault"`
		} `json:"AttachableResponse"`
	}

	err := json.Unmarshal(body, &envelope)
	if err != nil {
		return nil, qbo.NewDecodeError(fmt.Errorf("parsing upload response: %w", err))
	}

	if len(envelope.AttachableResponse) == 0 {
		return nil, qbo.NewDecodeError(errEmptyUploadResponse)
	}

	first := envelope.AttachableResponse[0]
	if first.Fault != nil {
		return nil, qbo.NewFaultError(http.StatusBadRequest, first.Fault)
	}

	return first.Attachable, nil
}
