package e2e

import (
	"fmt"
	"testing"
	"time"

	"github.com/playwright-community/playwright-go"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// E2ETestSuite provides a test suite for end-to-end tests
type E2ETestSuite struct {
	suite.Suite
	pw      *playwright.Playwright
	browser playwright.Browser
	page    playwright.Page
	expect  playwright.PlaywrightAssertions
}

// SetupSuite runs once before all tests
func (suite *E2ETestSuite) SetupSuite() {
	pw, err := playwright.Run()
	require.NoError(suite.T(), err, "could not launch playwright")
	suite.pw = pw

	browser, err := pw.Chromium.Launch()
	require.NoError(suite.T(), err, "could not launch chromium")
	suite.browser = browser

	suite.expect = playwright.NewPlaywrightAssertions()
}

// TearDownSuite runs once after all tests
func (suite *E2ETestSuite) TearDownSuite() {
	if suite.browser != nil {
		suite.browser.Close()
	}
	if suite.pw != nil {
		suite.pw.Stop()
	}
}

// SetupTest runs before each test
func (suite *E2ETestSuite) SetupTest() {
	page, err := suite.browser.NewPage(playwright.BrowserNewPageOptions{AcceptDownloads: playwright.Bool(true)})
	require.NoError(suite.T(), err, "could not create page")
	suite.page = page

	_, err = suite.page.Goto(appURL)
	require.NoError(suite.T(), err, "could not navigate to app")
}

// TearDownTest runs after each test
func (suite *E2ETestSuite) TearDownTest() {
	if suite.page != nil {
		suite.page.Close()
	}
}

func (suite *E2ETestSuite) login(username, password string) {
	// Unauthenticated visits land on the login form
	err := suite.expect.Locator(suite.page.Locator("form[action='/login']")).ToBeVisible()
	require.NoError(suite.T(), err, "login form not visible")

	err = suite.page.Locator("#username").Fill(username)
	require.NoError(suite.T(), err, "failed to fill username")

	err = suite.page.Locator("#password").Fill(password)
	require.NoError(suite.T(), err, "failed to fill password")

	err = suite.page.Locator("form[action='/login'] button[type=submit]").Click()
	require.NoError(suite.T(), err, "failed to click login")

	err = suite.expect.Locator(suite.page.Locator("#total")).ToBeVisible()
	require.NoError(suite.T(), err, "did not redirect to expenses page after login")
}

func (suite *E2ETestSuite) addExpense(amount, category, description, date string) {
	err := suite.page.Locator("#add-expense").Click()
	require.NoError(suite.T(), err, "failed to click add button")

	err = suite.page.Locator("#amount").Fill(amount)
	require.NoError(suite.T(), err, "failed to fill amount")

	_, err = suite.page.Locator("#category").SelectOption(playwright.SelectOptionValues{
		Labels: &[]string{category},
	})
	require.NoError(suite.T(), err, "failed to select category")

	err = suite.page.Locator("#description").Fill(description)
	require.NoError(suite.T(), err, "failed to fill description")

	err = suite.page.Locator("#date").Fill(date)
	require.NoError(suite.T(), err, "failed to fill date")

	err = suite.page.Locator("form[action='/expenses'] button[type=submit]").Click()
	require.NoError(suite.T(), err, "failed to submit expense")
}

func (suite *E2ETestSuite) TestCompleteUserFlow() {
	suite.login("testuser", "testpass123")

	suite.addExpense("12.50", "Food", "Lunch Test", "2024-01-01")

	err := suite.expect.Locator(suite.page.Locator(".flash-success")).ToHaveText("Expense added successfully!")
	require.NoError(suite.T(), err, "missing success flash")

	row := suite.page.Locator(".expense-row", playwright.PageLocatorOptions{HasText: "Lunch Test"})
	err = suite.expect.Locator(row).ToHaveCount(1)
	require.NoError(suite.T(), err, "expense row missing")

	err = suite.expect.Locator(row).ToContainText("12.50")
	require.NoError(suite.T(), err, "amount mismatch")

	err = suite.expect.Locator(row).ToContainText("Food")
	require.NoError(suite.T(), err, "category mismatch")

	// Export the report
	download, err := suite.page.ExpectDownload(func() error {
		return suite.page.Locator("#export").Click()
	})
	require.NoError(suite.T(), err, "export did not download")
	require.Equal(suite.T(), "Expense Report for testuser.pdf", download.SuggestedFilename())
}

func (suite *E2ETestSuite) TestRegisterAndIsolation() {
	username := fmt.Sprintf("e2e_%d", time.Now().UnixNano())

	_, err := suite.page.Goto(appURL + "/register")
	require.NoError(suite.T(), err)

	require.NoError(suite.T(), suite.page.Locator("#username").Fill(username))
	require.NoError(suite.T(), suite.page.Locator("#password").Fill("secret123"))
	_, err = suite.page.Locator("#currency").SelectOption(playwright.SelectOptionValues{Values: &[]string{"EUR"}})
	require.NoError(suite.T(), err)
	require.NoError(suite.T(), suite.page.Locator("form[action='/register'] button[type=submit]").Click())

	err = suite.expect.Locator(suite.page.Locator(".flash-success")).ToContainText("Registration successful!")
	require.NoError(suite.T(), err, "registration flash missing")

	suite.login(username, "secret123")

	err = suite.expect.Locator(suite.page.Locator("#total")).ToHaveText("EUR 0.00")
	require.NoError(suite.T(), err, "new account should start empty")

	err = suite.expect.Locator(suite.page.Locator(".expense-row")).ToHaveCount(0)
	require.NoError(suite.T(), err, "other accounts' expenses must not be visible")
}

func (suite *E2ETestSuite) TestCategoryManagement() {
	suite.login("testuser", "testpass123")

	_, err := suite.page.Goto(appURL + "/categories")
	require.NoError(suite.T(), err)

	require.NoError(suite.T(), suite.page.Locator("#name").Fill("Travel"))
	require.NoError(suite.T(), suite.page.Locator("form[action='/categories'] button[type=submit]").Click())

	err = suite.expect.Locator(suite.page.Locator(".flash-success")).ToHaveText("Category added successfully!")
	require.NoError(suite.T(), err)

	item := suite.page.Locator("ul.categories li", playwright.PageLocatorOptions{HasText: "Travel"})
	require.NoError(suite.T(), item.Locator("button").Click())

	err = suite.expect.Locator(suite.page.Locator(".flash-success")).ToHaveText("Category deleted successfully!")
	require.NoError(suite.T(), err)
}

// TestE2ESuite runs the e2e test suite
func TestE2ESuite(t *testing.T) {
	suite.Run(t, new(E2ETestSuite))
}
