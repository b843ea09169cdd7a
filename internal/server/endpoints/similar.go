package endpoints

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"net/http"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/signet-dev/signet/internal/api"
	"github.com/signet-dev/signet/internal/match"
	"github.com/signet-dev/signet/internal/svcctx"
)

// SimilarEndpoint handles POST /api/similar: a multipart upload of exactly
// two images, compared by feature matching.
type SimilarEndpoint struct{}

var _ api.Endpoint = (*SimilarEndpoint)(nil)

func (e *SimilarEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/similar", e.handler
}

func (e *SimilarEndpoint) RequiresInit() bool { return false }

func (e *SimilarEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("failed to parse form: %v", err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	files := r.MultipartForm.File["images"]
	if len(files) != 2 {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("exactly 2 images required, got %d", len(files)))
		return
	}

	threshold := match.DefaultThreshold
	if v := r.FormValue("threshold"); v != "" {
		t, err := strconv.Atoi(v)
		if err != nil || t < 1 {
			writeError(w, http.StatusBadRequest, "threshold must be a positive integer")
			return
		}
		threshold = t
	}

	imgs := make([]image.Image, 0, 2)
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to open upload: %v", err))
			return
		}
		img, _, err := image.Decode(f)
		f.Close()
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("failed to decode %s: %v", fh.Filename, err))
			return
		}
		imgs = append(imgs, img)
	}

	result := match.Compare(imgs[0], imgs[1], threshold)

	if logger := svcctx.LoggerFrom(r.Context()); logger != nil {
		logger.Info("image comparison",
			"matches", result.Matches,
			"threshold", result.Threshold,
			"similar", result.Similar)
	}

	writeJSON(w, http.StatusOK, result)
}

func (e *SimilarEndpoint) Command(getServerURL func() string) *cobra.Command {
	var threshold int
	cmd := &cobra.Command{
		Use:   "similar <image-a> <image-b>",
		Short: "Compare two images by feature matching",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			fields := map[string]string{}
			if threshold > 0 {
				fields["threshold"] = strconv.Itoa(threshold)
			}
			var result match.Result
			if err := client.PostFiles(cmd.Context(), "/api/similar", "images", args[:2], fields, &result); err != nil {
				return err
			}
			return api.Output(result)
		},
	}
	cmd.Flags().IntVar(&threshold, "threshold", 0, "Match count threshold (default 30)")
	return cmd
}
