package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common"
	_ "github.com/joho/godotenv/autoload" // Automatically load .env file if present
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rxtech-lab/collection-search-mcp/internal/constants"
	"github.com/rxtech-lab/collection-search-mcp/internal/models"
	"github.com/rxtech-lab/collection-search-mcp/internal/services"
	"github.com/rxtech-lab/collection-search-mcp/internal/utils"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const (
	defaultRPC      = constants.PorciniRPC
	defaultContract = constants.PorciniSearchContract
	defaultOwner    = "0x81f85e63Ce049a6f72f78C4A60b8186e04EbC215"
)

var defaultCollections = []string{
	"0xfc3De4990a8EBe9C8dEbd7C826936Eb62Ef457B4",
	"0xc6851Cd880B742163B09377Ee4092Bcd7e2266b4",
}

type searchOptions struct {
	rpc         string
	contract    string
	collections []string
	owner       string
	limit       string
	timeout     time.Duration
	ethclient   bool
	log         bool
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func newRootCmd() *cobra.Command {
	opts := &searchOptions{}

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Find the tokens an owner holds in ERC-721 collections",
		Long: "Calls findByOwner(address[],address,uint256) on a collection search contract " +
			"with a read-only eth_call and prints the decoded collections as JSON.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd.Context(), opts, cmd.OutOrStdout())
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.rpc, "rpc", envOr("SEARCH_RPC_URL", defaultRPC), "JSON-RPC endpoint (env SEARCH_RPC_URL)")
	flags.StringVar(&opts.contract, "contract", envOr("SEARCH_CONTRACT_ADDRESS", defaultContract), "collection search contract address (env SEARCH_CONTRACT_ADDRESS)")
	flags.StringArrayVar(&opts.collections, "collection", defaultCollections, "ERC-721 collection address, repeatable")
	flags.StringVar(&opts.owner, "owner", envOr("SEARCH_OWNER_ADDRESS", defaultOwner), "token owner address (env SEARCH_OWNER_ADDRESS)")
	flags.StringVar(&opts.limit, "limit", strconv.Itoa(models.DefaultFindByOwnerLimit), "maximum tokens returned per collection")
	flags.DurationVar(&opts.timeout, "timeout", 30*time.Second, "eth_call timeout")
	flags.BoolVar(&opts.ethclient, "ethclient", false, "use go-ethereum's ethclient instead of the plain JSON-RPC client")
	flags.BoolVar(&opts.log, "log", false, "enable debug logging on stderr")

	return cmd
}

func (o *searchOptions) query() (common.Address, models.FindByOwnerQuery, error) {
	if !utils.IsValidEthereumAddress(o.contract) {
		return common.Address{}, models.FindByOwnerQuery{}, fmt.Errorf("invalid contract address: %q", o.contract)
	}
	args := models.FindByOwnerArguments{
		CollectionAddresses: o.collections,
		OwnerAddress:        o.owner,
		Limit:               json.Number(o.limit),
	}
	query, err := args.Query()
	if err != nil {
		return common.Address{}, models.FindByOwnerQuery{}, err
	}
	return common.HexToAddress(o.contract), query, nil
}

func runSearch(ctx context.Context, opts *searchOptions, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	logger := utils.NewLogger(opts.log)
	defer logger.Sync()

	contract, query, err := opts.query()
	if err != nil {
		return err
	}

	dial := services.NewRPCCallerDialer(opts.timeout)
	if opts.ethclient {
		dial = services.DialEthClientCaller
	}
	if opts.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.timeout)
		defer cancel()
	}

	searchService := services.NewSearchService(nil, dial, logger, services.NewSearchMetrics(prometheus.NewRegistry()))
	results, err := searchService.FindByOwner(ctx, opts.rpc, contract, query)
	if err != nil {
		return err
	}

	logger.Debug("search finished", zap.Int("collections", len(results)))

	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(results)
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
