// Command xsdtool is the CLI surface for the xsd module: validate an XML
// instance document against a schema, or generate a best-effort JSON Schema
// from one of its top-level element declarations.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/schemarena/xsd11"
	"github.com/schemarena/xsd11/generator"

	"github.com/agentflare-ai/go-xmldom"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "xsdtool",
		Short:         "Build, validate, and generate from XSD 1.1 schemas",
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	rootCmd.AddCommand(newValidateCmd(), newGenerateCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func newValidateCmd() *cobra.Command {
	var color bool
	cmd := &cobra.Command{
		Use:   "validate <schema.xsd> <instance.xml>",
		Short: "Validate an XML instance document against an XSD 1.1 schema",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			return runValidate(args[0], args[1], color)
		},
	}
	cmd.Flags().BoolVar(&color, "color", true, "has no effect: diagnostics are printed without color")
	return cmd
}

func runValidate(schemaPath, instancePath string, _ bool) error {
	schema, err := loadSchema(schemaPath)
	if err != nil {
		return fmt.Errorf("xsdtool: %w", err)
	}

	instanceData, err := os.ReadFile(instancePath)
	if err != nil {
		return fmt.Errorf("xsdtool: read instance: %w", err)
	}
	doc, err := xmldom.NewDecoderFromBytes(instanceData).Decode()
	if err != nil {
		return fmt.Errorf("xsdtool: parse instance: %w", err)
	}

	v := xsd.NewValidator(schema)
	if err := v.ValidateDocument(doc); err != nil {
		return fmt.Errorf("xsdtool: %w", err)
	}

	if v.Valid() {
		fmt.Printf("%s is valid\n", instancePath)
		return nil
	}

	diags := xsd.NewDiagnostics(v.Failures())
	fmt.Printf("found %d validation issue(s) in %s:\n\n", len(diags), instancePath)
	for _, d := range diags {
		fmt.Print(d.Format())
		fmt.Println()
	}
	os.Exit(1)
	return nil
}

func newGenerateCmd() *cobra.Command {
	var namespace, local, output string
	cmd := &cobra.Command{
		Use:   "generate <schema.xsd>",
		Short: "Generate a best-effort JSON Schema from a top-level element declaration",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runGenerate(args[0], xsd.QName{Namespace: namespace, Local: local}, output)
		},
	}
	cmd.Flags().StringVar(&namespace, "namespace", "", "target namespace of the element to generate from")
	cmd.Flags().StringVar(&local, "element", "", "local name of the top-level element to generate from (required)")
	cmd.Flags().StringVar(&output, "output", "-", "output file, or - for stdout")
	_ = cmd.MarkFlagRequired("element")
	return cmd
}

func runGenerate(schemaPath string, name xsd.QName, output string) error {
	schema, err := loadSchema(schemaPath)
	if err != nil {
		return fmt.Errorf("xsdtool: %w", err)
	}

	gen := generator.NewJSONSchemaGenerator(schema)
	js, err := gen.Generate(name)
	if err != nil {
		return fmt.Errorf("xsdtool: %w", err)
	}

	out, err := json.MarshalIndent(js, "", "  ")
	if err != nil {
		return fmt.Errorf("xsdtool: marshal schema: %w", err)
	}
	out = append(out, '\n')

	if output == "" || output == "-" {
		_, err = os.Stdout.Write(out)
		return err
	}
	return os.WriteFile(output, out, 0o644)
}

func loadSchema(path string) (*xsd.Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema: %w", err)
	}
	doc, err := xmldom.NewDecoderFromBytes(data).Decode()
	if err != nil {
		return nil, fmt.Errorf("parse schema: %w", err)
	}
	return xsd.Parse(context.Background(), doc, xsd.BuildOptions{
		RegisterBuiltins: xsd.RegisterBuiltinsYes,
		BuiltinOverwrite: xsd.OverwriteWarn,
	})
}
