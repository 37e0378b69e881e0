package downloader_test

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/airbusgeo/eurosat-ingester/downloader"
	"github.com/airbusgeo/eurosat-ingester/interface/provider"
	"github.com/airbusgeo/eurosat-ingester/service/log"
	"github.com/mholt/archiver"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

var _ = Describe("Stages", func() {
	var tmpDir string

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "stages")
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		os.RemoveAll(tmpDir)
	})

	Describe("Fetch", func() {
		It("should create the parent directory and download the archive", func() {
			zipFile, _ := createArchive(tmpDir)
			dst := filepath.Join(tmpDir, "data", "raw", "EuroSAT_MS.zip")

			Expect(downloader.Fetch(ctx, provider.NewLocalArchiveProvider(), zipFile, dst)).To(Succeed())

			expected, err := os.ReadFile(zipFile)
			Expect(err).NotTo(HaveOccurred())
			Expect(os.ReadFile(dst)).To(Equal(expected))
		})

		It("should log the progress every 5 percent", func() {
			core, logs := observer.New(zapcore.InfoLevel)
			progress := downloader.ProgressLogger(log.WithLogger(ctx, zap.New(core)), 0.05)
			for _, fraction := range []float64{0, .01, .049, .05, .051, .12, .5, .99, 1, 1} {
				progress(fraction, int64(fraction*1000), 1000)
			}

			var messages []string
			for _, entry := range logs.All() {
				messages = append(messages, entry.Message)
			}
			Expect(messages).To(Equal([]string{
				"Downloaded 0.0% of 1000.00o",
				"Downloaded 5.0% of 1000.00o",
				"Downloaded 12.0% of 1000.00o",
				"Downloaded 50.0% of 1000.00o",
				"Downloaded 99.0% of 1000.00o",
				"Downloaded 100.0% of 1000.00o",
			}))
		})

		It("should log the progress of the download", func() {
			zipFile, _ := createArchive(tmpDir)
			core, logs := observer.New(zapcore.InfoLevel)
			lctx := log.WithLogger(ctx, zap.New(core))

			Expect(downloader.Fetch(lctx, provider.NewLocalArchiveProvider(), zipFile, filepath.Join(tmpDir, "raw", "EuroSAT_MS.zip"))).To(Succeed())
			Expect(logs.FilterMessageSnippet("Downloaded 100.0% of ").Len()).To(Equal(1))
		})

		It("should propagate a missing archive", func() {
			err := downloader.Fetch(ctx, provider.NewLocalArchiveProvider(), filepath.Join(tmpDir, "nope.zip"), filepath.Join(tmpDir, "raw", "a.zip"))
			var notFound provider.ErrArchiveNotFound
			Expect(errors.As(err, &notFound)).To(BeTrue())
		})
	})

	Describe("Unpack", func() {
		It("should extract the archive next to the destination", func() {
			zipFile, _ := createArchive(tmpDir)
			extracted := filepath.Join(tmpDir, "data", "interim", "EuroSAT_MS")

			Expect(downloader.Unpack(ctx, zipFile, extracted)).To(Succeed())
			Expect(filepath.Join(extracted, "2750", "Forest", "Forest_0.jpg")).To(BeARegularFile())
			Expect(filepath.Join(extracted, "docs", "README.txt")).To(BeARegularFile())

			// Extracting again overwrites
			Expect(downloader.Unpack(ctx, zipFile, extracted)).To(Succeed())
		})

		It("should warn when the archive does not contain the expected directory", func() {
			writeFile(filepath.Join(tmpDir, "fixture", "EuroSAT_RGB", "2750", "Forest", "Forest_0.jpg"), "Forest")
			zipFile := filepath.Join(tmpDir, "EuroSAT_MS.zip")
			Expect(archiver.Archive([]string{filepath.Join(tmpDir, "fixture", "EuroSAT_RGB")}, zipFile)).To(Succeed())

			core, logs := observer.New(zapcore.InfoLevel)
			lctx := log.WithLogger(ctx, zap.New(core))
			extracted := filepath.Join(tmpDir, "interim", "EuroSAT_MS")

			Expect(downloader.Unpack(lctx, zipFile, extracted)).To(Succeed())
			Expect(filepath.Join(tmpDir, "interim", "EuroSAT_RGB", "2750", "Forest", "Forest_0.jpg")).To(BeARegularFile())
			Expect(extracted).NotTo(BeADirectory())

			warnings := logs.FilterMessage("archive does not contain the expected directory").All()
			Expect(warnings).To(HaveLen(1))
			Expect(warnings[0].Level).To(Equal(zapcore.WarnLevel))
			Expect(warnings[0].ContextMap()).To(HaveKeyWithValue("dir", extracted))
		})

		It("should not warn when the archive contains the expected directory", func() {
			zipFile, _ := createArchive(tmpDir)
			core, logs := observer.New(zapcore.InfoLevel)

			Expect(downloader.Unpack(log.WithLogger(ctx, zap.New(core)), zipFile, filepath.Join(tmpDir, "interim", "EuroSAT_MS"))).To(Succeed())
			Expect(logs.FilterLevelExact(zapcore.WarnLevel).Len()).To(BeZero())
		})

		It("should fail on a corrupt archive", func() {
			corrupt := filepath.Join(tmpDir, "corrupt.zip")
			writeFile(corrupt, "this is not a zip file")
			Expect(downloader.Unpack(ctx, corrupt, filepath.Join(tmpDir, "interim", "corrupt"))).NotTo(Succeed())
		})
	})

	Describe("Organize", func() {
		It("should find the data directory and copy all the images", func() {
			zipFile, jpgs := createArchive(tmpDir)
			extracted := filepath.Join(tmpDir, "interim", "EuroSAT_MS")
			Expect(downloader.Unpack(ctx, zipFile, extracted)).To(Succeed())

			dst := filepath.Join(tmpDir, "processed", "EuroSAT")
			res, err := downloader.Organize(ctx, extracted, dst, downloader.OrganizeOptions{Extension: ".jpg"})
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Found).To(BeTrue())
			Expect(res.DataDir).To(Equal(filepath.Join(extracted, "2750")))
			Expect(res.Files).To(Equal(jpgs))
			Expect(res.Copied).To(Equal(jpgs + len(downloader.ClassNames)))
			Expect(filepath.Join(dst, "SeaLake", "SeaLake_2.jpg")).To(BeARegularFile())
		})

		It("should merge with the existing destination", func() {
			src := filepath.Join(tmpDir, "interim")
			jpgs := createDataset(filepath.Join(src, "data"), []string{"AnnualCrop", "Forest"})
			dst := filepath.Join(tmpDir, "processed", "EuroSAT")
			writeFile(filepath.Join(dst, "Forest", "Forest_0.jpg"), "old")
			writeFile(filepath.Join(dst, "Forest", "extra.jpg"), "extra")

			res, err := downloader.Organize(ctx, src, dst, downloader.OrganizeOptions{Extension: ".jpg"})
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Files).To(Equal(jpgs + 1))
			Expect(os.ReadFile(filepath.Join(dst, "Forest", "Forest_0.jpg"))).To(Equal([]byte("Forest")))
		})

		It("should log an error and leave the destination absent when no data directory exists", func() {
			src := filepath.Join(tmpDir, "interim")
			writeFile(filepath.Join(src, "a", "b", "image.jpg"), "jpg")
			writeFile(filepath.Join(src, "Forest.txt"), "not a directory")
			dst := filepath.Join(tmpDir, "processed", "EuroSAT")

			core, logs := observer.New(zapcore.InfoLevel)
			lctx := log.WithLogger(ctx, zap.New(core))

			res, err := downloader.Organize(lctx, src, dst, downloader.OrganizeOptions{Extension: ".jpg"})
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Found).To(BeFalse())
			Expect(dst).NotTo(BeADirectory())

			errLogs := logs.FilterMessage("Could not find EuroSAT data directory").All()
			Expect(errLogs).To(HaveLen(1))
			Expect(errLogs[0].Level).To(Equal(zapcore.ErrorLevel))
		})

		It("should not fail when the unpacked directory is missing", func() {
			res, err := downloader.Organize(ctx, filepath.Join(tmpDir, "nope"), filepath.Join(tmpDir, "dst"), downloader.OrganizeOptions{Extension: ".jpg"})
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Found).To(BeFalse())
		})
	})

	Describe("FindDataDir", func() {
		var root string

		BeforeEach(func() {
			root = filepath.Join(tmpDir, "unpacked")
			createDataset(filepath.Join(root, "a_decoy"), []string{"Forest"})
			createDataset(filepath.Join(root, "b_full"), downloader.ClassNames.Slice())
		})

		It("should select the first directory containing a class", func() {
			Expect(downloader.FindDataDir(root, false)).To(Equal(filepath.Join(root, "a_decoy")))
		})

		It("should select the first directory containing all the classes", func() {
			Expect(downloader.FindDataDir(root, true)).To(Equal(filepath.Join(root, "b_full")))
		})

		It("should consider the root itself", func() {
			Expect(downloader.FindDataDir(filepath.Join(root, "b_full"), true)).To(Equal(filepath.Join(root, "b_full")))
		})
	})
})
