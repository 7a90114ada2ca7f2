package artifact_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/housescore/internal/adapters/artifact"
	"github.com/okian/housescore/internal/adapters/bridge"
	"github.com/okian/housescore/internal/domain/schema"
	"github.com/okian/housescore/internal/domain/scoring"
)

var houses = schema.HousePrices()

const linearJSON = `{"kind": "linear", "intercept": 50000, "coefficients": {"GrLivArea": 100}}`

const linearYAML = `
kind: linear
intercept: 50000
coefficients:
  GrLivArea: 100
`

// modelDir creates <tmp>/<name>/<version> and writes file with content.
func modelDir(t *testing.T, name, version, file, content string) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), name, version)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if file != "" {
		if err := os.WriteFile(filepath.Join(dir, file), []byte(content), 0o600); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	return dir
}

func TestDescribe(t *testing.T) {
	Convey("Given artifact paths", t, func() {
		Convey("Then name and version come from the two parent directories", func() {
			name, version := artifact.Describe("/var/azureml-app/house-prices/3/model.pkl")
			So(name, ShouldEqual, "house-prices")
			So(version, ShouldEqual, "3")
		})

		Convey("Then short paths fall back to unknown", func() {
			name, version := artifact.Describe("model.pkl")
			So(name, ShouldEqual, artifact.Unknown)
			So(version, ShouldEqual, artifact.Unknown)
		})

		Convey("Then an empty segment is unknown", func() {
			name, version := artifact.Describe("/models/model.pkl")
			So(name, ShouldEqual, artifact.Unknown)
			So(version, ShouldEqual, "models")
		})
	})
}

func TestResolve(t *testing.T) {
	Convey("Given a model directory with a JSON artifact", t, func() {
		dir := modelDir(t, "house-prices", "7", "model.json", linearJSON)
		meta, err := artifact.Resolve(dir, "model.json")

		Convey("Then it resolves with identity and format", func() {
			So(err, ShouldBeNil)
			So(meta.Path, ShouldEqual, filepath.Join(dir, "model.json"))
			So(meta.Name, ShouldEqual, "house-prices")
			So(meta.Version, ShouldEqual, "7")
			So(meta.Format, ShouldEqual, artifact.FormatJSON)
			So(meta.Size, ShouldEqual, int64(len(linearJSON)))
		})
	})

	Convey("Given resolution failures", t, func() {
		Convey("When the model directory is unset", func() {
			_, err := artifact.Resolve("", "")
			So(errors.Is(err, artifact.ErrModelDirUnset), ShouldBeTrue)
		})

		Convey("When the default artifact is missing", func() {
			dir := modelDir(t, "m", "1", "", "")
			_, err := artifact.Resolve(dir, "")
			So(errors.Is(err, artifact.ErrNotFound), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, artifact.DefaultFile)
		})

		Convey("When the artifact path is a directory", func() {
			dir := modelDir(t, "m", "1", "", "")
			So(os.Mkdir(filepath.Join(dir, "model.pkl"), 0o755), ShouldBeNil)
			_, err := artifact.Resolve(dir, "")
			So(errors.Is(err, artifact.ErrIsDirectory), ShouldBeTrue)
		})

		Convey("When the artifact is empty", func() {
			dir := modelDir(t, "m", "1", "model.pkl", "")
			_, err := artifact.Resolve(dir, "")
			So(errors.Is(err, artifact.ErrEmpty), ShouldBeTrue)
		})

		Convey("When the extension is unknown", func() {
			dir := modelDir(t, "m", "1", "model.onnx", "bytes")
			_, err := artifact.Resolve(dir, "model.onnx")
			So(errors.Is(err, artifact.ErrUnsupportedFormat), ShouldBeTrue)
		})
	})
}

func TestLoadNative(t *testing.T) {
	ctx := context.Background()
	loader := artifact.NewLoader(houses)
	area, _ := houses.Index("GrLivArea")

	row := func(v int64) []schema.Row {
		values := houses.Defaults()
		values[area] = schema.IntValue(schema.KindInt16, v)
		return []schema.Row{schema.NewRow(values)}
	}

	for _, tc := range []struct {
		file, content string
	}{
		{"model.json", linearJSON},
		{"model.yaml", linearYAML},
	} {
		Convey("Given a native artifact "+tc.file, t, func() {
			dir := modelDir(t, "house-prices", "1", tc.file, tc.content)
			meta, err := artifact.Resolve(dir, tc.file)
			So(err, ShouldBeNil)

			p, err := loader.Load(ctx, meta)
			So(err, ShouldBeNil)

			Convey("Then the predictor scores rows", func() {
				out, err := p.Predict(ctx, row(1200))
				So(err, ShouldBeNil)
				So(out, ShouldResemble, []float64{50000 + 120000})
			})
		})
	}

	Convey("Given corrupt native artifacts", t, func() {
		cases := map[string]string{
			"model.json": `{"kind": "linear", "intercept": `,
			"model.yml":  "kind: linear\nslope: 3\n",
		}
		for file, content := range cases {
			dir := modelDir(t, "m", "1", file, content)
			meta, err := artifact.Resolve(dir, file)
			So(err, ShouldBeNil)
			_, err = loader.Load(ctx, meta)

			Convey("Then "+file+" fails to load", func() {
				So(errors.Is(err, artifact.ErrCorrupt), ShouldBeTrue)
			})
		}
	})

	Convey("Given a well-formed document with an invalid model", t, func() {
		doc, _ := json.Marshal(scoring.Document{Kind: "svm"})
		dir := modelDir(t, "m", "1", "model.json", string(doc))
		meta, _ := artifact.Resolve(dir, "model.json")
		_, err := loader.Load(ctx, meta)

		Convey("Then the model error is kept in the chain", func() {
			So(errors.Is(err, artifact.ErrCorrupt), ShouldBeTrue)
			So(errors.Is(err, scoring.ErrInvalidModel), ShouldBeTrue)
		})
	})
}

func TestLoadPickle(t *testing.T) {
	ctx := context.Background()

	Convey("Given a pickle artifact", t, func() {
		dir := modelDir(t, "house-prices", "2", "model.pkl", "\x80\x04\x95")
		meta, err := artifact.Resolve(dir, "")
		So(err, ShouldBeNil)
		So(meta.Format, ShouldEqual, artifact.FormatPickle)

		Convey("When no bridge command is configured", func() {
			_, err := artifact.NewLoader(houses).Load(ctx, meta)

			Convey("Then loading fails as unavailable", func() {
				So(errors.Is(err, bridge.ErrUnavailable), ShouldBeTrue)
			})
		})

		Convey("When the bridge accepts the artifact", func() {
			var probed string
			runner := func(_ context.Context, _ []string, payload []byte) ([]byte, error) {
				var req bridge.Request
				_ = json.Unmarshal(payload, &req)
				probed = req.Op
				return []byte(`{"results": []}`), nil
			}
			loader := artifact.NewLoader(houses,
				artifact.WithBridgeCommand([]string{"python", "bridge.py"}),
				artifact.WithBridgeOptions(bridge.WithRunner(runner)),
			)
			p, err := loader.Load(ctx, meta)

			Convey("Then the artifact is probed and a bridge predictor returned", func() {
				So(err, ShouldBeNil)
				So(probed, ShouldEqual, bridge.OpLoad)
				So(p.Name(), ShouldEqual, "bridge:python")
			})
		})

		Convey("When the bridge cannot unpickle the artifact", func() {
			runner := func(context.Context, []string, []byte) ([]byte, error) {
				return []byte(`{"error": "invalid load key"}`), nil
			}
			loader := artifact.NewLoader(houses,
				artifact.WithBridgeCommand([]string{"python"}),
				artifact.WithBridgeOptions(bridge.WithRunner(runner)),
			)
			_, err := loader.Load(ctx, meta)

			Convey("Then loading fails", func() {
				So(errors.Is(err, bridge.ErrInference), ShouldBeTrue)
			})
		})
	})
}
