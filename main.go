package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/shiplink/fedexgate/internal/server"
	"github.com/shiplink/fedexgate/pkg/carrier"
	"go.uber.org/zap"
)

var version = "0.0.1"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "fedexgate",
	Short:   "FedEx Shipment Gateway - rate, ship, track and proof-of-delivery against the FedEx API",
	Version: version,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the operational HTTP server (health, metrics)",
	RunE:  runServe,
}

var quoteCmd = &cobra.Command{
	Use:   "quote",
	Short: "Request rate quotes for a prospective shipment",
	RunE:  runQuote,
}

var shipCmd = &cobra.Command{
	Use:   "ship",
	Short: "Create a shipment and write its label file",
	RunE:  runShip,
}

var trackCmd = &cobra.Command{
	Use:   "track <tracking-number>",
	Short: "Look up raw tracking detail for a tracking number",
	Args:  cobra.ExactArgs(1),
	RunE:  runTrack,
}

var podCmd = &cobra.Command{
	Use:   "pod <tracking-number> <save-path>",
	Short: "Fetch the proof-of-delivery document for a delivered shipment",
	Args:  cobra.ExactArgs(2),
	RunE:  runPOD,
}

var (
	flagService         string
	flagWeight          float64
	flagCurrency        string
	flagDestPostal      string
	flagDestCountry     string
	flagShipmentID      string
	flagRecipientName   string
	flagRecipientStreet string
	flagRecipientCity   string
	flagRecipientPostal string
	flagRecipientCtry   string
	flagIsReturn        bool
	flagReturnReference string
)

func init() {
	quoteCmd.Flags().StringVar(&flagService, "service", "", "internal service code; omit for all available services")
	quoteCmd.Flags().Float64Var(&flagWeight, "weight", 1, "package weight in kilograms")
	quoteCmd.Flags().StringVar(&flagCurrency, "currency", "EUR", "preferred currency")
	quoteCmd.Flags().StringVar(&flagDestPostal, "dest-postal", "", "destination postal code")
	quoteCmd.Flags().StringVar(&flagDestCountry, "dest-country", "", "destination country code")

	shipCmd.Flags().StringVar(&flagShipmentID, "shipment-id", "", "caller-side shipment identifier")
	shipCmd.Flags().StringVar(&flagService, "service", "", "internal service code")
	shipCmd.Flags().Float64Var(&flagWeight, "weight", 1, "package weight in kilograms")
	shipCmd.Flags().StringVar(&flagRecipientName, "recipient-name", "", "recipient person name")
	shipCmd.Flags().StringVar(&flagRecipientStreet, "recipient-street", "", "recipient street line")
	shipCmd.Flags().StringVar(&flagRecipientCity, "recipient-city", "", "recipient city")
	shipCmd.Flags().StringVar(&flagRecipientPostal, "recipient-postal", "", "recipient postal code")
	shipCmd.Flags().StringVar(&flagRecipientCtry, "recipient-country", "", "recipient country code")
	shipCmd.Flags().BoolVar(&flagIsReturn, "return", false, "create a return shipment")
	shipCmd.Flags().StringVar(&flagReturnReference, "return-reference", "", "RMA reason for a return shipment")

	rootCmd.AddCommand(serveCmd, quoteCmd, shipCmd, trackCmd, podCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	env, err := setup(ctx)
	if err != nil {
		return err
	}
	defer env.close(ctx)

	env.logger.Info("Starting FedEx Shipment Gateway",
		zap.Int("port", env.cfg.Port),
		zap.String("version", env.cfg.Version),
	)

	srv := server.New(server.Config{Port: env.cfg.Port}, env.registry, env.logger)
	if err := srv.Run(ctx); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

func runQuote(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	env, err := setup(ctx)
	if err != nil {
		return err
	}
	defer env.close(ctx)

	quotes, err := env.gateway.Quote(ctx, &carrier.QuoteRequest{
		Shipper:            env.shipper(),
		DestinationPostal:  flagDestPostal,
		DestinationCountry: flagDestCountry,
		WeightKG:           flagWeight,
		Service:            carrier.ServiceType(flagService),
		Currency:           flagCurrency,
	})
	if err != nil {
		return err
	}
	return printJSON(quotes)
}

func runShip(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	env, err := setup(ctx)
	if err != nil {
		return err
	}
	defer env.close(ctx)

	result, err := env.gateway.Ship(ctx, &carrier.ShipmentRequest{
		ShipmentID: flagShipmentID,
		Shipper:    env.shipper(),
		Recipient: carrier.Party{
			Contact: carrier.Contact{PersonName: flagRecipientName},
			Address: carrier.Address{
				StreetLines: []string{flagRecipientStreet},
				City:        flagRecipientCity,
				PostalCode:  flagRecipientPostal,
				CountryCode: flagRecipientCtry,
			},
		},
		Service:         carrier.ServiceType(flagService),
		WeightKG:        flagWeight,
		IsReturn:        flagIsReturn,
		ReturnReference: flagReturnReference,
	})
	if err != nil {
		return err
	}
	return printJSON(result)
}

func runTrack(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	env, err := setup(ctx)
	if err != nil {
		return err
	}
	defer env.close(ctx)

	detail, err := env.gateway.Track(ctx, args[0])
	if err != nil {
		return err
	}
	return printJSON(detail)
}

func runPOD(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	env, err := setup(ctx)
	if err != nil {
		return err
	}
	defer env.close(ctx)

	path, err := env.gateway.ProofOfDelivery(ctx, args[0], args[1])
	if err != nil {
		return err
	}
	fmt.Println(path)
	return nil
}

func printJSON(v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(b))
	return nil
}
