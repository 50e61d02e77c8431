package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/betbot/gomarket/internal/domain"
	"github.com/betbot/gomarket/internal/session"
	"github.com/betbot/gomarket/ledger/client"
	"github.com/betbot/gomarket/ledger/wallet"
	"github.com/betbot/gomarket/pkg/config"
	"github.com/betbot/gomarket/pkg/persistence"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"
)

// 标签页
const (
	tabBrowse = iota
	tabPurchases
	tabSell
)

var tabNames = []string{"商品目录", "我的购买", "我的上架"}

// 文件日志记录器（只写入文件，不污染终端界面）
var (
	fileLogger     *log.Logger
	fileLoggerOnce sync.Once
)

func initFileLogger() {
	fileLoggerOnce.Do(func() {
		logDir := "logs"
		if err := os.MkdirAll(logDir, 0755); err != nil {
			logDir = os.TempDir()
		}
		logFile := filepath.Join(logDir, "market-tui.log")
		file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			file = os.NewFile(0, os.DevNull)
		}
		fileLogger = log.New(file, "", log.LstdFlags)
		// 全局 logrus 也重定向到文件，避免 SDK 日志打断界面
		logrus.SetOutput(file)
	})
}

var (
	// 样式定义
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	inactiveTabStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("245")).
				Padding(0, 1)

	selectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("238"))

	availableStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("2")) // 绿色

	unavailableStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("1")) // 红色

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	priceStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("11")) // 黄色

	borderStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("238")).
			Padding(0, 1)

	errStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("1"))

	okStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("2"))
)

// 新增商品表单字段
const (
	fieldName = iota
	fieldDescription
	fieldPrice
	fieldLink
	fieldCount
)

var fieldLabels = []string{"名称", "描述", "价格 (APT)", "下载链接"}

// model 是应用程序的状态
type model struct {
	sess *session.Session

	tab    int
	cursor int

	// 新增商品表单
	formOpen  bool
	formField int
	formVals  [fieldCount]string

	busy bool
	err  error

	ctx    context.Context
	cancel context.CancelFunc
}

// changedMsg 会话状态变化消息
type changedMsg struct{}

// opDoneMsg 操作完成消息
type opDoneMsg struct{ err error }

// tickMsg 定时器消息
type tickMsg time.Time

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// waitChangeCmd 等待会话状态变化后触发重绘
func waitChangeCmd(sess *session.Session) tea.Cmd {
	return func() tea.Msg {
		<-sess.Changed()
		return changedMsg{}
	}
}

func refreshCmd(ctx context.Context, sess *session.Session) tea.Cmd {
	return func() tea.Msg {
		if err := sess.LoadCatalog(ctx); err != nil {
			return opDoneMsg{err: err}
		}
		return opDoneMsg{err: sess.LoadCallerData(ctx)}
	}
}

func initialModel(sess *session.Session) model {
	ctx, cancel := context.WithCancel(context.Background())
	return model{
		sess:   sess,
		ctx:    ctx,
		cancel: cancel,
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(
		tickCmd(),
		waitChangeCmd(m.sess),
		refreshCmd(m.ctx, m.sess),
	)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.formOpen {
			return m.updateForm(msg)
		}
		return m.updateList(msg)

	case changedMsg:
		// 会话任何变化都重绘，并继续等待下一次变化
		return m, waitChangeCmd(m.sess)

	case opDoneMsg:
		m.busy = false
		m.err = msg.err
		return m, nil

	case tickMsg:
		// 周期重绘（购买成功弹窗自动消失等时间相关状态）
		return m, tickCmd()
	}
	return m, nil
}

func (m model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		m.cancel()
		return m, tea.Quit

	case "tab":
		m.tab = (m.tab + 1) % len(tabNames)
		m.cursor = 0

	case "shift+tab":
		m.tab = (m.tab + len(tabNames) - 1) % len(tabNames)
		m.cursor = 0

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}

	case "down", "j":
		if m.cursor < m.rowCount()-1 {
			m.cursor++
		}

	case "r":
		if !m.busy {
			m.busy = true
			m.err = nil
			return m, refreshCmd(m.ctx, m.sess)
		}

	case "a":
		if m.tab == tabSell {
			m.formOpen = true
			m.formField = 0
			m.formVals = [fieldCount]string{}
		}

	case "enter":
		if m.tab == tabBrowse && !m.busy {
			if p, ok := m.selectedProduct(); ok {
				m.busy = true
				m.err = nil
				id := p.ID
				return m, func() tea.Msg {
					return opDoneMsg{err: m.sess.PurchaseProduct(m.ctx, id)}
				}
			}
		}

	case "d":
		if m.tab == tabPurchases && !m.busy {
			purchases := m.sess.Purchases()
			if m.cursor < len(purchases) {
				m.busy = true
				m.err = nil
				id := purchases[m.cursor].ProductID
				return m, func() tea.Msg {
					return opDoneMsg{err: m.sess.GetDownloadLink(m.ctx, id)}
				}
			}
		}

	case "t":
		if m.tab == tabSell && !m.busy {
			listings := m.sess.SellerProducts()
			if m.cursor < len(listings) {
				m.busy = true
				m.err = nil
				id := listings[m.cursor].ID
				return m, func() tea.Msg {
					return opDoneMsg{err: m.sess.ToggleAvailability(m.ctx, id)}
				}
			}
		}

	case "esc":
		m.sess.CloseDownloadModal()
		m.sess.ClosePurchaseModal()
	}
	return m, nil
}

func (m model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.formOpen = false
		m.sess.ResetDraft()
		return m, nil

	case "tab", "down":
		m.formField = (m.formField + 1) % fieldCount
		return m, nil

	case "shift+tab", "up":
		m.formField = (m.formField + fieldCount - 1) % fieldCount
		return m, nil

	case "enter":
		m.sess.SetDraft(domain.ProductDraft{
			Name:         m.formVals[fieldName],
			Description:  m.formVals[fieldDescription],
			Price:        m.formVals[fieldPrice],
			DownloadLink: m.formVals[fieldLink],
		})
		m.formOpen = false
		m.busy = true
		m.err = nil
		return m, func() tea.Msg {
			return opDoneMsg{err: m.sess.AddProduct(m.ctx)}
		}

	case "backspace":
		v := m.formVals[m.formField]
		if len(v) > 0 {
			r := []rune(v)
			m.formVals[m.formField] = string(r[:len(r)-1])
		}
		return m, nil

	case "ctrl+c":
		m.cancel()
		return m, tea.Quit
	}

	// 普通字符输入
	if msg.Type == tea.KeyRunes || msg.String() == " " {
		m.formVals[m.formField] += string(msg.Runes)
	}
	return m, nil
}

func (m model) rowCount() int {
	switch m.tab {
	case tabBrowse:
		return len(m.sess.Products())
	case tabPurchases:
		return len(m.sess.Purchases())
	case tabSell:
		return len(m.sess.SellerProducts())
	}
	return 0
}

func (m model) selectedProduct() (domain.Product, bool) {
	products := m.sess.Products()
	if m.cursor < len(products) {
		return products[m.cursor], true
	}
	return domain.Product{}, false
}

func (m model) View() string {
	var b strings.Builder

	account := m.sess.Account()
	status := "未连接"
	switch m.sess.Readiness() {
	case wallet.StatusReady:
		status = shortAddr(account)
	case wallet.StatusLoading:
		status = "加载中..."
	}
	header := fmt.Sprintf("数字市场  钱包: %s", status)
	if m.sess.Loading() || m.busy {
		header += "  [刷新中]"
	}
	b.WriteString(headerStyle.Render(header))
	b.WriteString("\n\n")

	// 标签页
	var tabs []string
	for i, name := range tabNames {
		if i == m.tab {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}
	b.WriteString(strings.Join(tabs, " "))
	b.WriteString("\n\n")

	if m.formOpen {
		b.WriteString(m.viewForm())
	} else {
		switch m.tab {
		case tabBrowse:
			b.WriteString(m.viewBrowse())
		case tabPurchases:
			b.WriteString(m.viewPurchases())
		case tabSell:
			b.WriteString(m.viewSell())
		}
	}

	// 弹窗
	if modal := m.sess.PurchaseModalState(); modal.IsOpen {
		b.WriteString("\n")
		b.WriteString(borderStyle.Render(okStyle.Render(
			fmt.Sprintf("✓ 购买成功: %s  (%s APT)", modal.ProductName, modal.Price))))
		b.WriteString("\n")
	}
	if modal := m.sess.DownloadModalState(); modal.IsOpen {
		b.WriteString("\n")
		b.WriteString(borderStyle.Render(
			fmt.Sprintf("下载 %s:\n%s\n\n[esc] 关闭", modal.ProductName, modal.DownloadLink)))
		b.WriteString("\n")
	}

	// 最近通知
	notifications := m.sess.Notifications()
	if n := len(notifications); n > 0 {
		b.WriteString("\n")
		start := n - 3
		if start < 0 {
			start = 0
		}
		for _, note := range notifications[start:] {
			line := fmt.Sprintf("%s %s", note.Title, note.Message)
			if note.Severity == "error" {
				b.WriteString(errStyle.Render(line))
			} else {
				b.WriteString(dimStyle.Render(line))
			}
			b.WriteString("\n")
		}
	}

	if m.err != nil {
		b.WriteString("\n")
		b.WriteString(errStyle.Render("错误: " + m.err.Error()))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render(m.helpLine()))
	b.WriteString("\n")
	return b.String()
}

func (m model) helpLine() string {
	switch {
	case m.formOpen:
		return "[tab] 切换字段  [enter] 提交  [esc] 取消"
	case m.tab == tabBrowse:
		return "[tab] 切换页面  [↑/↓] 选择  [enter] 购买  [r] 刷新  [q] 退出"
	case m.tab == tabPurchases:
		return "[tab] 切换页面  [↑/↓] 选择  [d] 获取下载链接  [r] 刷新  [q] 退出"
	default:
		return "[tab] 切换页面  [↑/↓] 选择  [a] 上架商品  [t] 切换可售状态  [r] 刷新  [q] 退出"
	}
}

func (m model) viewBrowse() string {
	products := m.sess.Products()
	if len(products) == 0 {
		return dimStyle.Render("暂无商品")
	}
	var b strings.Builder
	account := m.sess.Account()
	for i, p := range products {
		marker := "  "
		switch {
		case session.IsOwnProduct(p, account):
			marker = dimStyle.Render("自")
		case m.sess.HasPurchased(p.ID):
			marker = okStyle.Render("购")
		}
		line := fmt.Sprintf("%s %-24s %s  %s",
			marker, truncate(p.Name, 24), priceStyle.Render(p.DisplayPrice()+" APT"),
			dimStyle.Render(truncate(p.Description, 40)))
		if i == m.cursor {
			line = selectedStyle.Render("> " + line)
		} else {
			line = "  " + line
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

func (m model) viewPurchases() string {
	purchases := m.sess.Purchases()
	if len(purchases) == 0 {
		return dimStyle.Render("暂无购买记录")
	}
	var b strings.Builder
	for i, p := range purchases {
		name := p.ProductID
		if n, ok := productName(m.sess.Products(), p.ProductID); ok {
			name = n
		}
		line := fmt.Sprintf("%-24s %s  %s",
			truncate(name, 24),
			priceStyle.Render(session.FormatPrice(p.PricePaid)+" APT"),
			dimStyle.Render(time.Unix(p.Timestamp, 0).Format("2006-01-02 15:04")))
		if i == m.cursor {
			line = selectedStyle.Render("> " + line)
		} else {
			line = "  " + line
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

func (m model) viewSell() string {
	listings := m.sess.SellerProducts()
	if len(listings) == 0 {
		return dimStyle.Render("暂无上架商品  [a] 上架新商品")
	}
	var b strings.Builder
	for i, p := range listings {
		state := availableStyle.Render("在售")
		if !p.IsAvailable {
			state = unavailableStyle.Render("下架")
		}
		line := fmt.Sprintf("%s %-24s %s",
			state, truncate(p.Name, 24), priceStyle.Render(p.DisplayPrice()+" APT"))
		if i == m.cursor {
			line = selectedStyle.Render("> " + line)
		} else {
			line = "  " + line
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

func (m model) viewForm() string {
	var b strings.Builder
	b.WriteString("上架新商品\n\n")
	for i := 0; i < fieldCount; i++ {
		cursor := " "
		if i == m.formField {
			cursor = ">"
		}
		val := m.formVals[i]
		if i == m.formField {
			val += "█"
		}
		b.WriteString(fmt.Sprintf("%s %-12s %s\n", cursor, fieldLabels[i]+":", val))
	}
	return borderStyle.Render(b.String())
}

func shortAddr(addr string) string {
	if len(addr) <= 12 {
		return addr
	}
	return addr[:8] + "..." + addr[len(addr)-4:]
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func productName(products []domain.Product, id string) (string, bool) {
	for _, p := range products {
		if p.ID == id {
			return p.Name, true
		}
	}
	return "", false
}

func main() {
	cfgPath := flag.String("config", "", "YAML 配置文件路径（可选）")
	flag.Parse()

	initFileLogger()

	cfg, err := config.LoadFromFile(*cfgPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "加载配置失败:", err)
		os.Exit(1)
	}

	gw := client.NewClient(client.Config{
		BaseURL:       cfg.Gateway.BaseURL,
		ModuleAddress: cfg.Gateway.ModuleAddress,
		Timeout:       cfg.Gateway.Timeout,
	})

	keyHex, err := wallet.LoadPrivateKeyHex(cfg.Wallet.SecretStore, cfg.Wallet.SecretKeyName, cfg.Wallet.PrivateKey)
	if err != nil {
		fmt.Fprintln(os.Stderr, "加载钱包私钥失败:", err)
		os.Exit(1)
	}
	w, err := wallet.NewLocalWallet(keyHex, gw)
	if err != nil {
		fmt.Fprintln(os.Stderr, "初始化钱包失败:", err)
		os.Exit(1)
	}

	account, _ := w.Account()
	store := persistence.NewJSONFileService(cfg.DataDir).NewStore("session", account, "snapshot")
	sess := session.New(session.Config{
		Gateway:       gw,
		Wallet:        w,
		ModuleAddress: cfg.Gateway.ModuleAddress,
		Snapshot:      store,
	})
	if err := sess.RestoreSnapshot(); err != nil {
		fileLogger.Printf("恢复本地快照失败: %v", err)
	}

	p := tea.NewProgram(initialModel(sess), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintln(os.Stderr, "界面运行失败:", err)
		os.Exit(1)
	}

	if err := sess.SaveSnapshot(); err != nil {
		fileLogger.Printf("保存本地快照失败: %v", err)
	}
}
