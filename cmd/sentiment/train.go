package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/okian/skillnav/internal/adapters/blob"
	"github.com/okian/skillnav/internal/domain/sentiment"
)

const (
	validationFraction = 0.2
	splitSeed          = 42
)

type trainFlags struct {
	train        string
	test         string
	out          string
	iterations   int
	c            float64
	learningRate float64
}

var flags trainFlags

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Fit the classifier on a labelled CSV and write the model artifact",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		return train(ctx, flags, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(trainCmd)

	def := sentiment.DefaultTrainOptions()
	trainCmd.Flags().StringVar(&flags.train, "train", "train.csv", "training CSV with text and sentiment columns (ISO-8859-1)")
	trainCmd.Flags().StringVar(&flags.test, "test", "", "optional held-out test CSV")
	trainCmd.Flags().StringVar(&flags.out, "out", "sentiment_model.json", "where to write the model artifact")
	trainCmd.Flags().IntVar(&flags.iterations, "iterations", def.Iterations, "gradient descent iterations")
	trainCmd.Flags().Float64Var(&flags.c, "c", def.C, "inverse L2 regularisation strength")
	trainCmd.Flags().Float64Var(&flags.learningRate, "learning-rate", def.LearningRate, "gradient descent step size")
}

func train(ctx context.Context, f trainFlags, w io.Writer) error {
	examples, err := readExamples(ctx, f.train)
	if err != nil {
		return err
	}
	if len(examples) == 0 {
		return fmt.Errorf("%s: %w", f.train, sentiment.ErrNoExamples)
	}

	trainSet, validation := sentiment.Split(examples, validationFraction, splitSeed)

	opts := sentiment.DefaultTrainOptions()
	opts.Iterations = f.iterations
	opts.C = f.c
	opts.LearningRate = f.learningRate

	m, err := sentiment.Fit(trainSet, opts)
	if err != nil {
		return fmt.Errorf("fit: %w", err)
	}
	fmt.Fprintf(w, "trained on %d examples, labels %v, vocabulary %d\n", len(trainSet), m.Labels, len(m.Vocabulary))

	if len(validation) > 0 {
		rep, err := sentiment.Evaluate(m, validation)
		if err != nil {
			return fmt.Errorf("evaluate validation: %w", err)
		}
		printReport(w, "Validation", rep)
	}

	if f.test != "" {
		testSet, err := readExamples(ctx, f.test)
		if err != nil {
			return err
		}
		rep, err := sentiment.Evaluate(m, testSet)
		if err != nil {
			return fmt.Errorf("evaluate test: %w", err)
		}
		printReport(w, "Test", rep)
	}

	var buf bytes.Buffer
	if err := m.Save(&buf); err != nil {
		return fmt.Errorf("encode model: %w", err)
	}
	if err := blob.Save(ctx, f.out, buf.Bytes()); err != nil {
		return err
	}
	color.New(color.FgGreen).Fprintf(w, "model written to %s\n", f.out)
	return nil
}

func readExamples(ctx context.Context, location string) ([]sentiment.Example, error) {
	if location == "" {
		return nil, errors.New("dataset location is required")
	}
	data, err := blob.Fetch(ctx, location)
	if err != nil {
		return nil, err
	}
	examples, err := sentiment.ReadCSV(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", location, err)
	}
	return examples, nil
}

func printReport(w io.Writer, title string, rep sentiment.Report) {
	color.New(color.FgYellow).Fprintf(w, "\n%s accuracy: %.4f (%d examples)\n", title, rep.Accuracy, rep.Total)

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Label", "Precision", "Recall", "F1", "Support"})
	for _, c := range rep.Classes {
		table.Append([]string{
			c.Label,
			fmt.Sprintf("%.2f", c.Precision),
			fmt.Sprintf("%.2f", c.Recall),
			fmt.Sprintf("%.2f", c.F1),
			fmt.Sprintf("%d", c.Support),
		})
	}
	table.Render()
}
