package main

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"time"

	"mintr"
	"mintr/tui"

	"github.com/gagliardetto/solana-go"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"
)

var (
	cfgPath     string
	networkFlag string
	rpcFlags    []string
	verbose     bool
)

func main() {
	root := &cobra.Command{
		Use:   "mintr",
		Short: "create, mint, send and list SPL tokens",
	}

	root.PersistentFlags().StringVar(&cfgPath, "config", "", "config file (default ~/.mintr/config.yaml)")
	root.PersistentFlags().StringVarP(&networkFlag, "network", "n", "", "network: "+strings.Join(mintr.NetworkNames(), ", "))
	root.PersistentFlags().StringSliceVar(&rpcFlags, "rpc", nil, "RPC endpoint(s) for the selected network, tried in order")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(initCmd())
	root.AddCommand(recoverCmd())
	root.AddCommand(createCmd())
	root.AddCommand(mintCmd())
	root.AddCommand(sendCmd())
	root.AddCommand(listCmd())
	root.AddCommand(watchCmd())
	root.AddCommand(lookupCmd())
	root.AddCommand(balanceCmd())
	root.AddCommand(airdropCmd())
	root.AddCommand(ledgerCmd())
	root.AddCommand(contactsCmd())
	root.AddCommand(networksCmd())

	// interrupt cancels waits; a transaction already sent is not affected
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// app is what every command shares: resolved config, network, logger,
// connection cache and the local store.
type app struct {
	cfg   mintr.Config
	net   mintr.Network
	log   *zap.SugaredLogger
	cache *mintr.ConnCache
	store *mintr.Store
}

func setup() *app {
	cfg, err := mintr.LoadConfig(cfgPath)
	if err != nil {
		die(fmt.Errorf("config: %w", err))
	}
	mintr.Merge(&cfg, mintr.Config{Network: networkFlag, RPC: rpcFlags})

	net, err := cfg.ResolveNetwork()
	if err != nil {
		die(err)
	}

	level := zapcore.WarnLevel
	if verbose {
		level = zapcore.DebugLevel
	}
	log, err := mintr.NewLogger(level)
	if err != nil {
		die(err)
	}

	store, err := mintr.OpenStore(cfg.DbPath)
	if err != nil {
		die(fmt.Errorf("store: %w", err))
	}

	return &app{
		cfg:   cfg,
		net:   net,
		log:   log,
		cache: mintr.NewConnCache(cfg.ConnOptions(), log),
		store: store,
	}
}

func (a *app) close() {
	a.store.Close()
	a.log.Sync()
}

func (a *app) chain() mintr.Chain {
	return a.cache.Get(a.net.Primary())
}

// session unlocks the keystore. Without one the session stays disconnected
// and panels refuse to submit.
func (a *app) session() *mintr.KeySession {
	if _, err := os.Stat(a.cfg.Keystore); errors.Is(err, os.ErrNotExist) {
		return mintr.NewKeySession(nil)
	}
	kp, err := mintr.LoadKeystore(a.cfg.Keystore, readpwd("password: "))
	if err != nil {
		die(err)
	}
	key := kp.PrivateKey()
	return mintr.NewKeySession(&key)
}

// owner reads the wallet address without asking for the password.
func (a *app) owner() *solana.PublicKey {
	pk, err := mintr.KeystorePubkey(a.cfg.Keystore)
	if err != nil {
		return nil
	}
	return &pk
}

func (a *app) deps(s mintr.Session) mintr.Deps {
	return mintr.Deps{
		Session:     s,
		Chain:       a.chain(),
		Network:     a.net,
		Notifier:    mintr.NewConsoleNotifier(os.Stdout, os.Stderr),
		Ledger:      a.store,
		Contacts:    a.store,
		Log:         a.log,
		Retry:       a.cfg.RetryOptions(),
		ConfirmWait: a.cfg.ConfirmWait,
	}
}

func (a *app) labels() []string {
	cs, err := a.store.ListContacts()
	if err != nil {
		return nil
	}
	out := make([]string, 0, len(cs))
	for _, c := range cs {
		out = append(out, c.Label)
	}
	return out
}

func (a *app) header() {
	fmt.Printf("network: %s\n", a.net.Name)
	fmt.Printf("rpc: %s\n\n", a.net.Primary())
}

func initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "create new wallet",
		Run: func(cmd *cobra.Command, args []string) {
			a := setup()
			defer a.close()

			if _, err := os.Stat(a.cfg.Keystore); err == nil {
				fmt.Println("wallet exists")
				return
			}

			mnemonic, kp, err := mintr.Generate()
			if err != nil {
				die(err)
			}

			fmt.Println("keypair generated")
			fmt.Printf("pubkey: %s\n\n", kp.Pubkey)
			fmt.Println("save your seed phrase:")
			fmt.Println(mnemonic)
			fmt.Println("")

			if err := mintr.SaveKeystore(a.cfg.Keystore, kp, newpwd()); err != nil {
				die(err)
			}
			fmt.Printf("saved: %s\n", a.cfg.Keystore)
		},
	}
}

func recoverCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "recover",
		Short: "restore wallet from mnemonic",
		Run: func(cmd *cobra.Command, args []string) {
			a := setup()
			defer a.close()

			fmt.Print("mnemonic: ")
			reader := bufio.NewReader(os.Stdin)
			mnemonic, _ := reader.ReadString('\n')

			kp, err := mintr.Recover(mnemonic)
			if err != nil {
				die(err)
			}
			fmt.Printf("pubkey: %s\n", kp.Pubkey)

			if err := mintr.SaveKeystore(a.cfg.Keystore, kp, newpwd()); err != nil {
				die(err)
			}
			fmt.Println("wallet recovered")
		},
	}
}

func createCmd() *cobra.Command {
	var (
		decimals    string
		supply      string
		noFreeze    bool
		interactive bool
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "create a new token mint",
		Long:  "Creates a mint with you as mint authority, plus your token account for it.\nExample: mintr create --decimals 6 --supply 1000000",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			a := setup()
			defer a.close()

			p := mintr.NewCreatePanel(a.deps(a.session()))
			p.Form = mintr.CreateForm{
				Decimals:      decimals,
				InitialSupply: supply,
				NoFreeze:      noFreeze || (a.cfg.FreezeEnabled != nil && !*a.cfg.FreezeEnabled),
			}
			if interactive {
				if err := tui.CreateForm(&p.Form).Run(); err != nil {
					die(err)
				}
			}

			a.header()
			op, err := p.Submit(cmd.Context())
			if err != nil {
				os.Exit(1)
			}
			fmt.Printf("mint: %s\n", op.Mint)
			fmt.Printf("account: %s\n", op.To)
		},
	}
	cmd.Flags().StringVarP(&decimals, "decimals", "d", mintr.DefaultDecimals, "decimal places (0-9)")
	cmd.Flags().StringVarP(&supply, "supply", "s", "", "initial supply in whole tokens")
	cmd.Flags().BoolVar(&noFreeze, "no-freeze", false, "do not set a freeze authority")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "fill the form interactively")
	return cmd
}

func mintCmd() *cobra.Command {
	var (
		to          string
		interactive bool
	)
	cmd := &cobra.Command{
		Use:   "mint [mint] [amount]",
		Short: "mint tokens of a mint you control",
		Long:  "Example: mintr mint 7xKX...9fQ 250 --to alice",
		Args:  cobra.MaximumNArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			a := setup()
			defer a.close()

			p := mintr.NewMintPanel(a.deps(a.session()))
			p.Form = mintr.MintForm{Owner: to}
			if len(args) > 0 {
				p.Form.Mint = args[0]
			}
			if len(args) > 1 {
				p.Form.Amount = args[1]
			}
			if interactive || len(args) < 2 {
				if err := tui.MintForm(&p.Form, a.labels()).Run(); err != nil {
					die(err)
				}
			}

			a.header()
			if _, err := p.Submit(cmd.Context()); err != nil {
				os.Exit(1)
			}
		},
	}
	cmd.Flags().StringVar(&to, "to", "", "recipient owner address or contact (default: you)")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "fill the form interactively")
	return cmd
}

func sendCmd() *cobra.Command {
	var interactive bool
	cmd := &cobra.Command{
		Use:   "send [mint] [to] [amount]",
		Short: "send tokens to an address or contact",
		Long:  "Example: mintr send EPjF...Dt1v alice 12.5",
		Args:  cobra.MaximumNArgs(3),
		Run: func(cmd *cobra.Command, args []string) {
			a := setup()
			defer a.close()

			p := mintr.NewSendPanel(a.deps(a.session()))
			fields := []*string{&p.Form.Mint, &p.Form.Recipient, &p.Form.Amount}
			for i, arg := range args {
				*fields[i] = arg
			}
			if interactive || len(args) < 3 {
				if err := tui.SendForm(&p.Form, a.labels()).Run(); err != nil {
					die(err)
				}
			}

			a.header()
			if _, err := p.Submit(cmd.Context()); err != nil {
				os.Exit(1)
			}
		},
	}
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "fill the form interactively")
	return cmd
}

func listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "list token balances",
		Run: func(cmd *cobra.Command, args []string) {
			a := setup()
			defer a.close()

			owner := a.owner()
			if owner == nil {
				die(mintr.ErrWalletDisconnected)
			}
			p := mintr.NewPoller(a.net, a.cache, mintr.PollerOptions{Retry: a.cfg.RetryOptions(), Log: a.log})
			p.SetOwner(owner)

			a.header()
			snap := p.Refresh(cmd.Context())
			if snap.Err != nil {
				die(fmt.Errorf("%v (%s)", snap.Err, mintr.Remedy(mintr.Classify(snap.Err))))
			}
			if len(snap.Rows) == 0 {
				fmt.Println("no token accounts")
				return
			}

			table := tablewriter.NewWriter(os.Stdout)
			table.SetHeader([]string{"Token", "Mint", "Balance"})
			table.SetAlignment(tablewriter.ALIGN_LEFT)
			table.SetAutoWrapText(false)
			for _, r := range snap.Rows {
				table.Append([]string{r.Symbol, r.Mint.String(), r.Display()})
			}
			table.Render()
		},
	}
}

func watchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "live token balances",
		Run: func(cmd *cobra.Command, args []string) {
			a := setup()
			defer a.close()

			// keep log lines out of the alt screen
			a.log = zap.NewNop().Sugar()

			p := mintr.NewPoller(a.net, a.cache, mintr.PollerOptions{
				Interval: a.cfg.PollInterval,
				Retry:    a.cfg.RetryOptions(),
				Log:      a.log,
			})
			p.SetOwner(a.owner())

			lookup := func(ctx context.Context, mint solana.PublicKey) (*mintr.TokenInfo, string, error) {
				return mintr.LookupMint(ctx, a.cache, a.net, mint, a.cfg.RetryOptions(), a.log)
			}
			if err := tui.Start(cmd.Context(), p, a.net, lookup); err != nil {
				die(err)
			}
		},
	}
}

func lookupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lookup <mint>",
		Short: "show a mint's decimals, supply and authorities",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			a := setup()
			defer a.close()

			mint, err := mintr.ParseAddress("mint", args[0])
			if err != nil {
				die(err)
			}

			info, ep, err := mintr.LookupMint(cmd.Context(), a.cache, a.net, mint, a.cfg.RetryOptions(), a.log)
			if err != nil {
				die(fmt.Errorf("%v (%s)", err, mintr.Remedy(mintr.Classify(err))))
			}

			fmt.Printf("mint: %s\n", info.Mint)
			fmt.Printf("decimals: %d\n", info.Decimals)
			fmt.Printf("supply: %s\n", mintr.FormatRaw(info.Supply, info.Decimals))
			fmt.Printf("mint authority: %s\n", fmtAuthority(info.MintAuthority))
			fmt.Printf("freeze authority: %s\n", fmtAuthority(info.FreezeAuthority))
			fmt.Printf("via: %s\n", ep)
			fmt.Printf("explorer: %s\n", mintr.ExplorerAddress(a.net, info.Mint))
		},
	}
}

func balanceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "balance",
		Short: "check SOL balance",
		Run: func(cmd *cobra.Command, args []string) {
			a := setup()
			defer a.close()

			owner := a.owner()
			if owner == nil {
				die(mintr.ErrWalletDisconnected)
			}
			fmt.Printf("pubkey: %s\n", owner)
			a.header()

			lamports, err := mintr.Balance(cmd.Context(), a.cache, a.net, *owner, a.cfg.RetryOptions(), a.log)
			if err != nil {
				fmt.Printf("SOL: (error: %v)\n", err)
				return
			}
			fmt.Printf("SOL: %s\n", mintr.FormatRaw(lamports, mintr.SOLDecimals))
		},
	}
}

func airdropCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "airdrop [sol]",
		Short: "request test SOL (devnet, testnet, localnet)",
		Args:  cobra.MaximumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			a := setup()
			defer a.close()

			amount := "1"
			if len(args) > 0 {
				amount = args[0]
			}
			lamports, err := mintr.ToRaw(amount, mintr.SOLDecimals)
			if err != nil {
				die(err)
			}
			owner := a.owner()
			if owner == nil {
				die(mintr.ErrWalletDisconnected)
			}

			a.header()
			sig, err := mintr.Airdrop(cmd.Context(), a.chain(), a.net, *owner, lamports, a.cfg.ConfirmWait)
			if err != nil {
				die(err)
			}
			fmt.Printf("✓ airdrop %s SOL: %s\n", amount, mintr.ExplorerTx(a.net, sig))
		},
	}
}

func ledgerCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "list submitted operations",
		Run: func(cmd *cobra.Command, args []string) {
			a := setup()
			defer a.close()

			records, err := a.store.ListRecords(limit)
			if err != nil {
				die(err)
			}
			if len(records) == 0 {
				fmt.Println("no operations")
				return
			}

			table := tablewriter.NewWriter(os.Stdout)
			table.SetHeader([]string{"ID", "Kind", "Network", "Mint", "To", "Amount", "Status", "Time"})
			table.SetAutoWrapText(false)

			now := time.Now().Unix()
			for _, r := range records {
				table.Append([]string{
					shortID(r.ID),
					r.Kind,
					r.Network,
					trunc(r.Mint),
					trunc(r.To),
					mintr.FormatRaw(r.Amount, r.Decimals),
					r.Status,
					fmtAgo(now - r.Time),
				})
			}
			table.Render()
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "rows to show")
	return cmd
}

func contactsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "contacts",
		Short: "address book for send recipients",
		Run: func(cmd *cobra.Command, args []string) {
			a := setup()
			defer a.close()

			cs, err := a.store.ListContacts()
			if err != nil {
				die(err)
			}
			if len(cs) == 0 {
				fmt.Println("no contacts")
				return
			}
			for _, c := range cs {
				fmt.Printf("%-20s %s\n", c.Label, c.Owner)
			}
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "add <label> <address>",
		Short: "save a contact",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			a := setup()
			defer a.close()

			if err := mintr.AddContact(a.store, args[0], args[1]); err != nil {
				die(err)
			}
			fmt.Printf("✓ %s → %s\n", strings.ToLower(args[0]), trunc(args[1]))
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "rm <label>",
		Short: "delete a contact",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			a := setup()
			defer a.close()

			if err := a.store.DeleteContact(strings.ToLower(args[0])); err != nil {
				die(err)
			}
			fmt.Printf("✓ removed %s\n", args[0])
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show <label>",
		Short: "print a contact's address",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			a := setup()
			defer a.close()

			c, err := a.store.GetContact(strings.ToLower(args[0]))
			if errors.Is(err, sql.ErrNoRows) {
				die(fmt.Errorf("unknown contact %q", args[0]))
			}
			if err != nil {
				die(err)
			}
			fmt.Println(c.Owner)
		},
	})
	return cmd
}

func networksCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "networks",
		Short: "list known networks",
		Run: func(cmd *cobra.Command, args []string) {
			cfg, err := mintr.LoadConfig(cfgPath)
			if err != nil {
				die(err)
			}
			mintr.Merge(&cfg, mintr.Config{Network: networkFlag, RPC: rpcFlags})
			selected, err := cfg.ResolveNetwork()
			if err != nil {
				die(err)
			}

			names := mintr.NetworkNames()
			sort.Strings(names)
			for _, name := range names {
				n := mintr.Networks[name]
				mark := " "
				if name == selected.Name {
					mark = "*"
					n = selected
				}
				faucet := ""
				if n.Faucet {
					faucet = " (faucet)"
				}
				fmt.Printf("%s %-9s %s%s\n", mark, name, strings.Join(n.Endpoints, ", "), faucet)
			}
		},
	}
}

func die(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}

func readpwd(prompt string) []byte {
	fmt.Print(prompt)
	pwd, _ := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	return pwd
}

func newpwd() []byte {
	pwd := readpwd("password: ")
	if len(pwd) == 0 {
		die(errors.New("empty password"))
	}
	if string(readpwd("repeat password: ")) != string(pwd) {
		die(errors.New("passwords do not match"))
	}
	return pwd
}

func fmtAuthority(pk *solana.PublicKey) string {
	if pk == nil {
		return "none"
	}
	return pk.String()
}

// shortID keeps the random tail of a ledger id.
func shortID(id string) string {
	if len(id) > 8 {
		return id[len(id)-8:]
	}
	return id
}

func trunc(s string) string {
	if len(s) > 12 {
		return s[:8] + "..."
	}
	return s
}

func fmtAgo(secs int64) string {
	if secs < 60 {
		return fmt.Sprintf("%ds ago", secs)
	}
	if secs < 3600 {
		return fmt.Sprintf("%dm ago", secs/60)
	}
	if secs < 86400 {
		return fmt.Sprintf("%dh ago", secs/3600)
	}
	return fmt.Sprintf("%dd ago", secs/86400)
}
